package main

import (
	"os"

	"github.com/ChetanBhuma/KutumbBackend-sub003/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
