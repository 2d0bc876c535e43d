package validation

// Messages of the paging query rules.
const (
	MsgOffset = `query parameter "offset" must be an int, 0 or larget`
	MsgLimit  = `query parameter "limit" must be an int, larger than 0`
)

// PagingRules rejects malformed offset and limit query parameters before a list
// handler coerces them.
func PagingRules() []Rule {
	return []Rule{
		Query("offset", IntMin(0), MsgOffset).AsOptional(),
		Query("limit", IntMin(1), MsgLimit).AsOptional(),
	}
}
