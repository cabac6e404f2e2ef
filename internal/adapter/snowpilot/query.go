package snowpilot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// maxPerPage is the largest result count the query endpoint honors.
const maxPerPage = 100

// supportedStates are the region codes the query endpoint accepts.
var supportedStates = map[string]string{
	"MT": "Montana",
	"CO": "Colorado",
	"WY": "Wyoming",
	"UT": "Utah",
	"ID": "Idaho",
	"WA": "Washington",
	"OR": "Oregon",
	"CA": "California",
	"AK": "Alaska",
	"NH": "New Hampshire",
	"VT": "Vermont",
	"ME": "Maine",
	"NY": "New York",
}

// Query selects which pit documents a fetch should return. Zero-value fields
// are sent as empty parameters, which the server treats as "any".
type Query struct {
	PitName      string
	State        string
	DateStart    string // YYYY-MM-DD
	DateEnd      string // YYYY-MM-DD
	Username     string
	Organization string
	PerPage      int
}

// Validate rejects region codes the endpoint does not recognize.
func (q Query) Validate() error {
	if q.State == "" {
		return nil
	}
	if _, ok := supportedStates[q.State]; !ok {
		return fmt.Errorf("unsupported state %q", q.State)
	}
	return nil
}

// Encode builds the form-style query string. The server requires every
// parameter to be present, in this order, even when empty.
func (q Query) Encode() string {
	perPage := q.PerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}
	params := []string{
		"PIT_NAME=" + url.QueryEscape(q.PitName),
		"STATE=" + url.QueryEscape(q.State),
		"OBS_DATE_MIN=" + url.QueryEscape(q.DateStart),
		"OBS_DATE_MAX=" + url.QueryEscape(q.DateEnd),
		"recent_dates=0",
		"USERNAME=" + url.QueryEscape(q.Username),
		"AFFIL=" + url.QueryEscape(q.Organization),
		"per_page=" + strconv.Itoa(perPage),
		"ADV_WHERE_QUERY=",
		"submit=Get+Pits",
	}
	return strings.Join(params, "&")
}
