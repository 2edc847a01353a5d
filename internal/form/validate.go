// internal/form/validate.go
//
// DSR forms subsystem: payload collection.
//
// Context
//   A browser posts whatever keys it likes.  Before an entry reaches the
//   store, Collect reduces the submission to exactly the storage fields the
//   form declares: undeclared keys are dropped, missing ones become "", and
//   layout markers never appear.  Values are stored verbatim, including
//   surrounding whitespace, because officers paste free text into most of
//   these fields.
//
//------------------------------------------------------------------------------

package form

// StorageFields returns the fields that carry data, in display order.
func (fd *FormDef) StorageFields() []FieldDef {
	out := make([]FieldDef, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		if !f.Layout() {
			out = append(out, f)
		}
	}
	return out
}

// Label returns the display label for a storage key, or the key itself.
func (fd *FormDef) Label(name string) string {
	for _, f := range fd.Fields {
		if f.Name == name && f.Label != "" {
			return f.Label
		}
	}
	return name
}

// Collect projects posted onto the form's storage fields.  The result always
// has one key per storage field.
func (fd *FormDef) Collect(posted map[string]string) map[string]string {
	fields := fd.StorageFields()
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = posted[f.Name]
	}
	return out
}
