package gateway

// unsetType is the type of the Unset sentinel. Handlers use Unset to mark
// optional update fields the caller never mentioned, which is a different
// thing from an explicit null: absent fields must not reach the remote API
// at all, while explicit nulls are sent as null to clear the field.
type unsetType struct{}

func (unsetType) String() string { return "UNSET" }

// Unset marks an optional field the caller did not provide.
var Unset any = unsetType{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unsetType)
	return ok
}
