package bookerville

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXML_NestedAndRepeated(t *testing.T) {
	doc := `<property id="BKV7">
		<name>Dune Cottage</name>
		<address><city>Outer Banks</city><state>NC</state></address>
		<photos>
			<photo>https://img/1.jpg</photo>
			<photo>https://img/2.jpg</photo>
		</photos>
	</property>`

	m, err := parseXML(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "BKV7", m["id"]) // attribute promoted to key
	assert.Equal(t, "Dune Cottage", m["name"])

	addr, ok := m["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Outer Banks", addr["city"])

	photos, ok := m["photos"].(map[string]any)
	require.True(t, ok)
	list, ok := photos["photo"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"https://img/1.jpg", "https://img/2.jpg"}, list)
}

func TestParseXML_MixedContent(t *testing.T) {
	m, err := parseXML(strings.NewReader(`<note lang="en">hello <b>world</b></note>`))
	require.NoError(t, err)
	assert.Equal(t, "en", m["lang"])
	assert.Equal(t, "hello", m["#text"])
	assert.Equal(t, "world", m["b"])
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := parseXML(strings.NewReader(`<a><b></a>`))
	assert.Error(t, err)

	_, err = parseXML(strings.NewReader(``))
	assert.Error(t, err)
}

func TestElements_UnwrapsContainer(t *testing.T) {
	m := map[string]any{
		"properties": map[string]any{
			"property": map[string]any{"bkvPropertyId": "solo"},
		},
	}
	got := elements(m, "property")
	require.Len(t, got, 1)
	assert.Equal(t, "solo", got[0]["bkvPropertyId"])

	assert.Nil(t, elements(map[string]any{}, "property"))
}
