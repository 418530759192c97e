package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/utils"
)

var BoardCommand = discord.SlashCommandCreate{
	Name:        "board",
	Description: "🗺️ Show the current quest board",
}

func BoardHandler(b *questboard.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		file, err := renderBoardFile(ctx, b)
		if err != nil {
			if errors.Is(err, board.ErrRenderUnavailable) {
				return utils.EH.CreateErrorEmbed(e, "Sorry, the quest board image is missing.")
			}
			slog.Error("Failed to render quest board",
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to render the quest board. Please try again.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Files: []*discord.File{file},
		})
	}
}

// renderBoardFile renders the current board into a Discord attachment.
func renderBoardFile(ctx context.Context, b *questboard.Bot) (*discord.File, error) {
	snapshot, err := b.Board.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	img, err := b.Renderer.Render(snapshot)
	if err != nil {
		return nil, err
	}
	return &discord.File{
		Name:   config.BoardFileName,
		Reader: bytes.NewReader(img),
	}, nil
}
