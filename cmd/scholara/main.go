package main

import (
	"os"

	"github.com/AycMouna/scholara/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
