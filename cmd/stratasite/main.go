// Command stratasite serves the site API and the uploaded images.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/stratasite/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
