package main

import (
	"log/slog"
	"os"

	"github.com/redgreat/racewong/cmd/racewong/commands"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	commands.Execute()
}
