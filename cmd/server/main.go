package main

import (
	"github.com/abc-custody/custody-backend/internal/server"
)

func main() {
	server.Init()
}
