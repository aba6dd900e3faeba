// Package guard decides whether an invocation may run, given what a command
// declares it needs and what the invoking user and the bot actually hold.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOwnerOnly              = errors.New("command is restricted to the bot owner")
	ErrDependencyUnavailable  = errors.New("persistence layer is unavailable")
	ErrMissingUserPermissions = errors.New("user is missing required permissions")
	ErrMissingBotPermissions  = errors.New("bot is missing required permissions")
)

// Reason classifies a rejection.
type Reason int

const (
	ReasonOwnerOnly Reason = iota + 1
	ReasonDependencyUnavailable
	ReasonUserPermissions
	ReasonBotPermissions
)

func (r Reason) String() string {
	switch r {
	case ReasonOwnerOnly:
		return "owner-only"
	case ReasonDependencyUnavailable:
		return "dependency-unavailable"
	case ReasonUserPermissions:
		return "user-permissions"
	case ReasonBotPermissions:
		return "bot-permissions"
	default:
		return "unknown"
	}
}

// Requirements is what a command declares. Zero value means unrestricted.
type Requirements struct {
	OwnerOnly bool
	UsesDB    bool
	User      []int64
	Bot       []int64
}

// Subject is who is invoking, and with which permissions, in the invocation context.
type Subject struct {
	UserID          string
	UserPermissions int64
	BotPermissions  int64
}

// Pinger reports whether the persistence layer is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Rejection is returned by Authorizer.Check when an invocation must not run.
type Rejection struct {
	Reason  Reason
	Missing []int64
	Cause   error
}

func (r *Rejection) Error() string {
	msg := r.sentinel().Error()
	if len(r.Missing) > 0 {
		msg += ": " + strings.Join(PermissionList(r.Missing), ", ")
	}
	if r.Cause != nil {
		msg += ": " + r.Cause.Error()
	}
	return msg
}

func (r *Rejection) Is(target error) bool {
	return target == r.sentinel()
}

func (r *Rejection) Unwrap() error { return r.Cause }

func (r *Rejection) sentinel() error {
	switch r.Reason {
	case ReasonOwnerOnly:
		return ErrOwnerOnly
	case ReasonDependencyUnavailable:
		return ErrDependencyUnavailable
	case ReasonUserPermissions:
		return ErrMissingUserPermissions
	default:
		return ErrMissingBotPermissions
	}
}

// Message is the text shown to the invoking user.
func (r *Rejection) Message() string {
	switch r.Reason {
	case ReasonOwnerOnly:
		return "This command can only be used by the bot owner."
	case ReasonDependencyUnavailable:
		return "This command is temporarily unavailable, please try again later."
	case ReasonUserPermissions:
		return fmt.Sprintf("You need the following permissions to run this command:\n`%s`",
			strings.Join(PermissionList(r.Missing), "`, `"))
	default:
		return fmt.Sprintf("I need the following permissions in this channel to run this command:\n`%s`",
			strings.Join(PermissionList(r.Missing), "`, `"))
	}
}

// Authorizer applies Requirements to a Subject.
type Authorizer struct {
	OwnerID string
	DB      Pinger
}

// Check runs the owner, persistence, user permission and bot permission checks
// in that order and returns the first failure as a *Rejection.
func (a *Authorizer) Check(ctx context.Context, req Requirements, subj Subject) error {
	if req.OwnerOnly && (a.OwnerID == "" || subj.UserID != a.OwnerID) {
		return &Rejection{Reason: ReasonOwnerOnly}
	}

	if req.UsesDB {
		if a.DB == nil {
			return &Rejection{Reason: ReasonDependencyUnavailable}
		}
		if err := a.DB.Ping(ctx); err != nil {
			return &Rejection{Reason: ReasonDependencyUnavailable, Cause: err}
		}
	}

	if len(req.User) > 0 {
		if missing := Missing(subj.UserPermissions, req.User); len(missing) > 0 {
			return &Rejection{Reason: ReasonUserPermissions, Missing: missing}
		}
	}

	if len(req.Bot) > 0 {
		if missing := Missing(subj.BotPermissions, req.Bot); len(missing) > 0 {
			return &Rejection{Reason: ReasonBotPermissions, Missing: missing}
		}
	}

	return nil
}
