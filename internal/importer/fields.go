package importer

// Field identifies a semantic profile field recognized by the engine.
// Values double as the suffix of the per-field settings keys
// (use_norm_email, filter_phone_number, ...).
type Field string

const (
	FieldID         Field = "id"
	FieldName       Field = "name"
	FieldGivenName  Field = "given_name"
	FieldFamilyName Field = "family_name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone_number"
	FieldNickname   Field = "nickname"
)

// fieldSpec binds a semantic field to the remote profile attribute it is
// read from and the local store column it is written to. Local is empty for
// fields that are collected but never written directly.
type fieldSpec struct {
	field  Field
	remote string
	local  string
}

// fieldTable fixes both the remote/local mapping and the iteration order of
// the per-field normalize/filter pass. Filters must not depend on fields
// processed later in the same pass.
var fieldTable = []fieldSpec{
	{FieldName, "login", "name"},
	{FieldGivenName, "firstName", "firstname"},
	{FieldFamilyName, "lastName", "realname"},
	{FieldEmail, "email", "email"},
	{FieldPhone, "mobilePhone", "phone"},
	{FieldNickname, "nickName", ""},
}

// specFor returns the mapping entry for a field. FieldID resolves to the
// remote user id rather than a profile attribute and has no entry here.
func specFor(f Field) (fieldSpec, bool) {
	for _, spec := range fieldTable {
		if spec.field == f {
			return spec, true
		}
	}
	return fieldSpec{}, false
}
