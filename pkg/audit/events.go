package audit

import (
	"fmt"
	"strconv"
	"strings"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func withError(msg, errMsg string) string {
	if errMsg != "" {
		return msg + ": " + errMsg
	}
	return msg
}

// AuthenticateEvent represents a login attempt
type AuthenticateEvent struct {
	Username     string
	ClientIP     string
	Method       string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with %s", e.Username, e.Method)
	}
	return withError(fmt.Sprintf("%s failed to authenticate with %s", e.Username, e.Method), e.ErrorMessage)
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.Method,
			"user":          e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
}

// RegisterEvent represents a self-service account registration
type RegisterEvent struct {
	Username     string
	ClientIP     string
	Role         string
	Success      bool
	ErrorMessage string
}

func (e RegisterEvent) MessageID() string {
	return "register"
}

func (e RegisterEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s registered with role %s", e.Username, e.Role)
	}
	return withError(fmt.Sprintf("%s failed to register", e.Username), e.ErrorMessage)
}

func (e RegisterEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e RegisterEvent) Facility() int {
	return FacilityAuth
}

func (e RegisterEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
			"role": e.Role,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "register",
			"result":    result(e.Success),
		},
	}
}

// BookEvent represents a create, update or delete of a book
type BookEvent struct {
	User         string
	ClientIP     string
	Operation    string
	BookID       uint
	Title        string
	Success      bool
	ErrorMessage string
}

// pastTense maps book operations to the verb used in messages.
var pastTense = map[string]string{
	"create": "created",
	"update": "updated",
	"delete": "deleted",
}

func (e BookEvent) MessageID() string {
	return "book"
}

func (e BookEvent) subject() string {
	s := "book"
	if e.BookID != 0 {
		s += " " + strconv.FormatUint(uint64(e.BookID), 10)
	}
	if e.Title != "" {
		s += fmt.Sprintf(" %q", e.Title)
	}
	return s
}

func (e BookEvent) Message() string {
	if e.Success {
		verb, ok := pastTense[e.Operation]
		if !ok {
			verb = e.Operation
		}
		return fmt.Sprintf("%s %s %s", e.User, verb, e.subject())
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.User, e.Operation, e.subject()), e.ErrorMessage)
}

func (e BookEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e BookEvent) Facility() int {
	return FacilityAuthPriv
}

func (e BookEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.BookID != 0 {
		sd[SDIDSubject]["book"] = strconv.FormatUint(uint64(e.BookID), 10)
	}
	if e.Title != "" {
		sd[SDIDSubject]["title"] = e.Title
	}
	return sd
}

// AccessDeniedEvent represents a request rejected by the access policy
type AccessDeniedEvent struct {
	User      string
	ClientIP  string
	Operation string
	Resource  string
	Reason    string
}

func (e AccessDeniedEvent) MessageID() string {
	return "access-denied"
}

func (e AccessDeniedEvent) Message() string {
	return withError(fmt.Sprintf("%s was denied %s on %s", e.User, e.Operation, e.Resource), e.Reason)
}

func (e AccessDeniedEvent) Severity() Severity {
	return SeverityWarning
}

func (e AccessDeniedEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AccessDeniedEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"resource": e.Resource,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    "denied",
		},
	}
}

// GroupEvent represents seeding or changing a permission group from the CLI
type GroupEvent struct {
	Group       string
	Permissions []string
	Created     bool
}

func (e GroupEvent) MessageID() string {
	return "group"
}

func (e GroupEvent) Message() string {
	verb := "updated"
	if e.Created {
		verb = "created"
	}
	return fmt.Sprintf("group %s %s with permissions [%s]", e.Group, verb, strings.Join(e.Permissions, ", "))
}

func (e GroupEvent) Severity() Severity {
	return SeverityNotice
}

func (e GroupEvent) Facility() int {
	return FacilityAuth
}

func (e GroupEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"group":       e.Group,
			"permissions": strings.Join(e.Permissions, ","),
		},
		SDIDAction: {
			"operation": "group",
			"result":    "success",
		},
	}
}
