// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one.
//
// Creating a page with its default sections and deleting a page with its
// sections both go through Run. On a standalone mongod (the usual
// development setup) transactions are unavailable and the writes run
// directly; callers order their writes so a partial failure leaves the
// parent document for a retry.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func holds the writes to run. ctx is a mongo.SessionContext inside a
// transaction and the caller's context otherwise.
type Func func(ctx context.Context) error

// Run executes fn in a transaction, or without one when the deployment
// cannot start sessions or transactions. log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		warn(log, "failed to start session, running without transaction", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warn(log, "transactions not supported, running without transaction", err)
		return fn(ctx)
	}
	return err
}

func warn(log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Warn(msg, zap.Error(err))
	}
}

// IsNotSupported reports whether err means the deployment has no
// multi-document transactions.
//
// Known codes: 20 (IllegalOperation on a standalone), 51 and 263.
// Otherwise at least two of the keywords below must appear in the message,
// so ordinary write errors mentioning "session" are not misread.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	matches := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			matches++
		}
	}
	return matches >= 2
}
