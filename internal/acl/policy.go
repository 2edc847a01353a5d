// internal/acl/policy.go
//
// Operation → allowed-role table.
//
// Context
// -------
// Every routed operation names exactly which roles may call it.  The table
// is the single place that decision lives; handlers never compare roles
// themselves.  There is no inheritance between roles.
//
// Notes
// -----
// • An operation missing from the table allows nobody.
// • Oxford commas, two spaces after periods.
package acl

import "github.com/prismappolice/control-room-dsr/internal/auth"

// Operation names one role-gated action.
type Operation string

const (
	OpProfile        Operation = "auth.profile"
	OpChangePassword Operation = "auth.change_password"
	OpLogout         Operation = "auth.logout"

	OpAdminDashboard  Operation = "admin.dashboard"
	OpAdminDistrict   Operation = "admin.district"
	OpAdminForm       Operation = "admin.form"
	OpAdminSearch     Operation = "admin.search"
	OpAdminExport     Operation = "admin.export"
	OpAdminUploads    Operation = "admin.uploads"
	OpAdminUploadFile Operation = "admin.upload_file"

	OpDistrictDashboard Operation = "district.dashboard"
	OpEntryForm         Operation = "district.entry_form"
	OpEntryEdit         Operation = "district.entry_edit"
	OpEntryDelete       Operation = "district.entry_delete"

	OpControlRoomDashboard  Operation = "controlroom.dashboard"
	OpControlRoomUpload     Operation = "controlroom.upload"
	OpControlRoomUploadFile Operation = "controlroom.upload_file"
)

var (
	anyone       = roleSet(auth.RoleAdmin, auth.RoleDistrict, auth.RoleControlRoom)
	adminOnly    = roleSet(auth.RoleAdmin)
	districtOnly = roleSet(auth.RoleDistrict)
	controlRoom  = roleSet(auth.RoleControlRoom)
)

var table = map[Operation]map[auth.Role]bool{
	OpProfile:        anyone,
	OpChangePassword: anyone,
	OpLogout:         anyone,

	OpAdminDashboard:  adminOnly,
	OpAdminDistrict:   adminOnly,
	OpAdminForm:       adminOnly,
	OpAdminSearch:     adminOnly,
	OpAdminExport:     adminOnly,
	OpAdminUploads:    adminOnly,
	OpAdminUploadFile: adminOnly,

	// Control-room users may open the district dashboard; the handler
	// forwards them to their own page.
	OpDistrictDashboard: roleSet(auth.RoleDistrict, auth.RoleControlRoom),
	OpEntryForm:         districtOnly,
	OpEntryEdit:         districtOnly,
	OpEntryDelete:       districtOnly,

	OpControlRoomDashboard:  controlRoom,
	OpControlRoomUpload:     controlRoom,
	OpControlRoomUploadFile: controlRoom,
}

func roleSet(roles ...auth.Role) map[auth.Role]bool {
	m := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

// Allowed reports whether role may perform op.
func Allowed(op Operation, role auth.Role) bool {
	return table[op][role]
}

// Operations lists every gated operation.  Used by tests and diagnostics.
func Operations() []Operation {
	out := make([]Operation, 0, len(table))
	for op := range table {
		out = append(out, op)
	}
	return out
}
