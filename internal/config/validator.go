// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree and applies defaults.  Any validation
// error aborts startup, ensuring the binary never runs with partial,
// malformed, or missing configuration.
//
// Field rules live on the struct tags in model.go.  Rules that span
// fields are registered here as struct-level validations.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(uploadRules, Upload{})
	return val
}

//
// cross-field rules
//

// uploadRules requires a root for the local backend and a bucket and
// region for S3.
func uploadRules(sl validator.StructLevel) {
	u := sl.Current().Interface().(Upload)
	switch u.Backend {
	case "local":
		if u.Root == "" {
			sl.ReportError(u.Root, "Root", "root", "required_for_local", "")
		}
	case "s3":
		if u.S3.Bucket == "" {
			sl.ReportError(u.S3.Bucket, "S3.Bucket", "bucket", "required_for_s3", "")
		}
		if u.S3.Region == "" {
			sl.ReportError(u.S3.Region, "S3.Region", "region", "required_for_s3", "")
		}
	}
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
