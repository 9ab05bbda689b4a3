package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Severity grades a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem found in a manifest.
type Finding struct {
	Severity Severity
	Section  string
	Key      string
	Message  string
}

func (f Finding) String() string {
	if f.Key == "" {
		return fmt.Sprintf("%s: [%s] %s", f.Severity, f.Section, f.Message)
	}
	return fmt.Sprintf("%s: [%s] %s: %s", f.Severity, f.Section, f.Key, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == SeverityError })
}

var (
	pkgNameRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	pkgDomainRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)
	requirementRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]+([=<>!~]=?[A-Za-z0-9_.\-]+)?$`)
	permissionRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func manifestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("ini"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		for tag, re := range map[string]*regexp.Regexp{
			"pkgname":     pkgNameRe,
			"pkgdomain":   pkgDomainRe,
			"requirement": requirementRe,
			"permission":  permissionRe,
		} {
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return re.MatchString(fl.Field().String())
			})
		}
		validate = v
	})
	return validate
}

// Check parses data and validates the result. Parse errors are returned as
// an error; everything else is a Finding.
func Check(data []byte) ([]Finding, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return m.Validate(), nil
}

// Validate reports field problems as errors, and unrecognized keys and
// questionable values as warnings. Errors sort first.
func (m *Manifest) Validate() []Finding {
	var out []Finding
	if !m.hasApp {
		out = append(out, Finding{Severity: SeverityError, Section: SectionApp, Message: "section is missing"})
	} else {
		out = append(out, fieldFindings(manifestValidator().Struct(m))...)
		if !m.HasPermission("INTERNET") {
			out = append(out, Finding{
				Severity: SeverityError,
				Section:  SectionApp,
				Key:      "android.permissions",
				Message:  "INTERNET is required for a network chat",
			})
		}
		if !slices.Contains(m.App.Requirements, "python3") {
			out = append(out, Finding{
				Severity: SeverityWarning,
				Section:  SectionApp,
				Key:      "requirements",
				Message:  "python3 is not listed",
			})
		}
		for key, list := range map[string][]string{
			"source.include_exts": m.App.SourceIncludeExts,
			"requirements":        m.App.Requirements,
			"android.permissions": m.App.AndroidPermissions,
		} {
			if d := duplicates(list); len(d) > 0 {
				out = append(out, Finding{
					Severity: SeverityWarning,
					Section:  SectionApp,
					Key:      key,
					Message:  "duplicate entries: " + strings.Join(d, ","),
				})
			}
		}
	}
	out = append(out, m.unknown...)

	slices.SortStableFunc(out, func(a, b Finding) int {
		if a.Severity != b.Severity {
			if a.Severity == SeverityError {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.Section, b.Section); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

func fieldFindings(err error) []Finding {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]Finding, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace looks like "Manifest.app.package.name" or
		// "Manifest.app.requirements[1]".
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		section, key, _ := strings.Cut(ns, ".")
		out = append(out, Finding{
			Severity: SeverityError,
			Section:  section,
			Key:      key,
			Message:  describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("%q must be one of: %s", fmt.Sprint(fe.Value()), fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("needs at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "alphanum":
		return fmt.Sprintf("%q is not a bare file extension", fmt.Sprint(fe.Value()))
	case "pkgname":
		return fmt.Sprintf("%q is not a valid package name", fmt.Sprint(fe.Value()))
	case "pkgdomain":
		return fmt.Sprintf("%q is not a reverse-DNS domain", fmt.Sprint(fe.Value()))
	case "requirement":
		return fmt.Sprintf("%q is not a valid requirement", fmt.Sprint(fe.Value()))
	case "permission":
		return fmt.Sprintf("%q is not a valid permission", fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

func duplicates(list []string) []string {
	seen := make(map[string]bool, len(list))
	var dup []string
	for _, s := range list {
		if seen[s] && !slices.Contains(dup, s) {
			dup = append(dup, s)
		}
		seen[s] = true
	}
	return dup
}
