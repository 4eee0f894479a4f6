package api

import (
	"context"
)

type keyType string

const (
	adminSubjectKey keyType = "adminSubject"
)

// ctxWithAdminSubject adds the authenticated admin subject to the context
func ctxWithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}
