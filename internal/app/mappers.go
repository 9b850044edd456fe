package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/bookerville"
	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The remote feed has drifted over the years, so every logical field keeps a
// list of historical spellings. Dot paths descend into nested elements.

var propertyAliases = map[string][]string{
	"id":          {"bkvPropertyId", "propertyId", "property_id", "id"},
	"title":       {"name", "title", "headline", "propertyName"},
	"category":    {"category", "propertyType", "property_type", "type"},
	"description": {"description", "shortDescription", "summary.description"},
	"price":       {"baseRate", "rates.baseRate", "price", "nightlyRate"},
	"beds":        {"bedrooms", "beds", "numBedrooms"},
	"baths":       {"bathrooms", "baths", "numBathrooms"},
	"area":        {"squareFeet", "area", "livingArea"},
	"parking":     {"parking", "parkingSpaces"},
	"guests":      {"maxGuests", "sleeps", "occupancy"},
	"contact":     {"managerEmail", "contact.email", "manager.email"},
	"phone":       {"managerPhone", "contact.phone", "manager.phone"},
}

var addressAliases = map[string][]string{
	"address1": {"address1", "address.line1", "addressLine1", "street"},
	"address2": {"address2", "address.line2", "addressLine2"},
	"city":     {"city", "address.city", "locality", "town"},
	"state":    {"state", "address.state", "region"},
	"zip":      {"zip", "postcode", "address.zip", "postalCode"},
	"country":  {"country", "address.country", "countryCode"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "". XML decoding yields strings
// for leaf values, but tolerate #text wrappers too.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["#text"].(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {url/src/name} maps.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		var raw []any
		switch v := lookupAny(m, k).(type) {
		case []any:
			raw = v
		case string:
			if v != "" {
				return []string{v}
			}
			continue
		case map[string]any:
			raw = []any{v}
		default:
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, key := range []string{"url", "src", "name", "#text"} {
					if u, ok := t[key].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** property mapper **********/

// mapProperty normalizes a details payload into the local schema. The same
// function runs over the stored RawUpstream snapshot to reconstruct the
// last-known upstream record for the merge baseline.
func mapProperty(p map[string]any, pullTime time.Time) domain.Property {
	id := deref(firstNonEmptyAlias(p, propertyAliases, "id"))

	summary := map[string]any{}
	if f := getFloatFlexible(p, propertyAliases["price"]...); f != nil {
		summary["price"] = *f
	}
	if n := firstIntFlexible(p, propertyAliases["beds"]...); n != nil {
		summary["beds"] = *n
	}
	if f := getFloatFlexible(p, propertyAliases["baths"]...); f != nil {
		summary["baths"] = *f
	}
	if f := getFloatFlexible(p, propertyAliases["area"]...); f != nil {
		summary["area"] = *f
	}
	if n := firstIntFlexible(p, propertyAliases["parking"]...); n != nil {
		summary["parking"] = *n
	}
	if s := firstNonEmptyAlias(p, propertyAliases, "description"); s != nil {
		summary["description"] = *s
	}

	details := map[string]any{}
	if addr := composeAddress(p); addr != "" {
		details["address"] = addr
	}
	if feats := firstSliceStrings(p, "features.feature", "features"); feats != nil {
		details["features"] = feats
	}
	if amen := firstSliceStrings(p, "amenities.amenity", "amenities", "facilities"); amen != nil {
		details["amenities"] = amen
	}
	if imgs := firstSliceStrings(p, "photos.photo", "photos", "images.image", "images"); imgs != nil {
		details["images"] = imgs
	}
	if s := firstNonEmptyAlias(p, propertyAliases, "contact"); s != nil {
		details["contact"] = *s
	}
	if s := firstNonEmptyAlias(p, propertyAliases, "phone"); s != nil {
		details["phone"] = *s
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		log.Error().Err(err).Str("context", "mapProperty").Msg("marshal summary failed")
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Error().Err(err).Str("context", "mapProperty").Msg("marshal details failed")
	}

	// RawUpstream is the normalization input minus the raw XML blob, which
	// lives on the bookerville mirror row instead.
	snapshot := make(map[string]any, len(p))
	for k, v := range p {
		if k == bookerville.RawKey {
			continue
		}
		snapshot[k] = v
	}
	rawJSON, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Str("context", "mapProperty").Msg("marshal snapshot failed")
	}

	ts := pullTime
	return domain.Property{
		PropertyID:  id,
		Title:       deref(firstNonEmptyAlias(p, propertyAliases, "title")),
		Summary:     summaryJSON,
		Details:     detailsJSON,
		Category:    deref(firstNonEmptyAlias(p, propertyAliases, "category")),
		IsActive:    true,
		LastSync:    &ts,
		RawUpstream: rawJSON,
	}
}

func composeAddress(p map[string]any) string {
	parts := []string{
		deref(firstNonEmptyAlias(p, addressAliases, "address1")),
		deref(firstNonEmptyAlias(p, addressAliases, "address2")),
		deref(firstNonEmptyAlias(p, addressAliases, "city")),
		deref(firstNonEmptyAlias(p, addressAliases, "state")),
		deref(firstNonEmptyAlias(p, addressAliases, "zip")),
		deref(firstNonEmptyAlias(p, addressAliases, "country")),
	}
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

/********** bookerville mirror mapper **********/

// mapBookerville maps a details payload, raw document included, stamping
// details_synced_at. The summary pass uses mapBookervilleSummary instead.
func mapBookerville(p map[string]any, pullTime time.Time) domain.BookervilleProperty {
	b := mapBookervilleFields(p)
	ts := pullTime
	b.DetailsSyncedAt = &ts
	return b
}

// mapBookervilleSummary maps a summary-list row, stamping summary_synced_at.
// Summary rows are sparse; the storage layer keeps existing mirror columns
// when an upsert carries NULL for them.
func mapBookervilleSummary(p map[string]any, pullTime time.Time) domain.BookervilleProperty {
	b := mapBookervilleFields(p)
	ts := pullTime
	b.SummarySyncedAt = &ts
	return b
}

func mapBookervilleFields(p map[string]any) domain.BookervilleProperty {
	marshal := func(path string) []byte {
		v := lookupAny(p, path)
		if v == nil {
			return nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Str("context", "mapBookerville").Str("path", path).Msg("marshal blob failed")
			return nil
		}
		return b
	}

	var rawXML []byte
	if s, ok := p[bookerville.RawKey].(string); ok {
		rawXML = []byte(s)
	}

	return domain.BookervilleProperty{
		BkvID:        deref(firstNonEmptyAlias(p, propertyAliases, "id")),
		Name:         firstNonEmptyAlias(p, propertyAliases, "title"),
		Address1:     firstNonEmptyAlias(p, addressAliases, "address1"),
		Address2:     firstNonEmptyAlias(p, addressAliases, "address2"),
		City:         firstNonEmptyAlias(p, addressAliases, "city"),
		State:        firstNonEmptyAlias(p, addressAliases, "state"),
		Zip:          firstNonEmptyAlias(p, addressAliases, "zip"),
		Country:      firstNonEmptyAlias(p, addressAliases, "country"),
		Bedrooms:     firstIntFlexible(p, propertyAliases["beds"]...),
		Bathrooms:    getFloatFlexible(p, propertyAliases["baths"]...),
		MaxGuests:    firstIntFlexible(p, propertyAliases["guests"]...),
		BookingInfo:  marshal("bookingInfo"),
		Availability: marshal("availability"),
		Manager:      marshal("manager"),
		RawXML:       rawXML,
	}
}
