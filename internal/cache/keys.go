package cache

import "fmt"

// Key is a logical identity of a cached report. Two logically identical
// requests must encode to byte-identical strings; cache correctness rests on
// that, so segment order and labels are fixed and never omitted per variant.
type Key interface {
	Encode() string
}

// ServiceKey identifies a report by who, which platform, which method and the
// date range. It is the base variant used by endpoints without result-set
// filtering.
type ServiceKey struct {
	UserID    string
	Service   string
	Method    string
	StartDate string
	EndDate   string
}

// Encode emits the labeled, colon-joined base segments.
func (k ServiceKey) Encode() string {
	return fmt.Sprintf(
		"user_id=%s:service=%s:method=%s:start_date=%s:end_date=%s",
		k.UserID, k.Service, k.Method, k.StartDate, k.EndDate,
	)
}

// AdvancedServiceKey extends ServiceKey for endpoints with result-set
// filtering (row limit plus substring search).
type AdvancedServiceKey struct {
	ServiceKey
	Limit  int
	Search string
}

// Encode appends the limit and search segments to the base encoding.
func (k AdvancedServiceKey) Encode() string {
	return fmt.Sprintf("%s:limit=%d:search=%s", k.ServiceKey.Encode(), k.Limit, k.Search)
}

// ParamServiceKey extends ServiceKey for endpoints parameterized by a single
// path value (e.g. a campaign id).
type ParamServiceKey struct {
	ServiceKey
	Param string
}

// Encode appends the param segment to the base encoding.
func (k ParamServiceKey) Encode() string {
	return fmt.Sprintf("%s:param=%s", k.ServiceKey.Encode(), k.Param)
}

// UserPrefix returns the key prefix shared by every cache entry belonging to
// userID. Deleting this prefix is how a disconnect invalidates the user's
// cached reports.
func UserPrefix(userID string) string {
	return fmt.Sprintf("user_id=%s:", userID)
}
