package app

import (
	"fmt"
	"net/url"
	"time"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

const airbnbRoomsBase = "https://www.airbnb.com/rooms"

// TripParams are the caller-supplied trip details for a checkout link.
type TripParams struct {
	CheckIn  string
	CheckOut string
	Adults   int
	Children int
}

// BuildCheckoutLink deterministically builds the Airbnb deep link for a
// listing with the trip parameters URL-encoded. Pure; the only failures are
// malformed input.
func BuildCheckoutLink(airbnbID string, p TripParams) (string, error) {
	if airbnbID == "" {
		return "", domain.NewValidationError("listing_id", "is required")
	}
	in, err := time.Parse("2006-01-02", p.CheckIn)
	if err != nil {
		return "", domain.NewValidationError("checkin", "must be a YYYY-MM-DD date")
	}
	out, err := time.Parse("2006-01-02", p.CheckOut)
	if err != nil {
		return "", domain.NewValidationError("checkout", "must be a YYYY-MM-DD date")
	}
	if !out.After(in) {
		return "", domain.NewValidationError("checkout", "must be after checkin")
	}
	if p.Adults < 1 {
		return "", domain.NewValidationError("adults", "must be at least 1")
	}
	if p.Children < 0 {
		return "", domain.NewValidationError("children", "must not be negative")
	}

	v := url.Values{}
	v.Set("check_in", p.CheckIn)
	v.Set("check_out", p.CheckOut)
	v.Set("adults", fmt.Sprint(p.Adults))
	v.Set("children", fmt.Sprint(p.Children))
	return fmt.Sprintf("%s/%s?%s", airbnbRoomsBase, url.PathEscape(airbnbID), v.Encode()), nil
}
