package bootstrap

import (
	"github.com/dalemusser/stratasite/internal/app/system/mailer"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps are the backends opened by ConnectDB and closed by Shutdown.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds uploaded images: the media library, logo and favicon.
	FileStorage storage.Store

	// Mailer sends contact and reservation notifications. Without an SMTP
	// host every send returns mailer.ErrDisabled.
	Mailer mailer.Sender
}
