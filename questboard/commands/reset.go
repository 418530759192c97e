package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/utils"
)

var ResetCommand = discord.SlashCommandCreate{
	Name:        "resetquests",
	Description: "🔓 Reset a quest (or the whole board) back to unclaimed",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "quest",
			Description:  "Quest to reset; leave empty to reset the whole board",
			Required:     false,
			Autocomplete: true,
		},
	},
}

func ResetHandler(b *questboard.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.Member()
		if member == nil || !b.IsModerator(*member) {
			return utils.EH.CreateErrorEmbed(e, "You need the moderator role to reset quests.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		// The announcement channel gets the refreshed board through the
		// notifier, so the command reply is just the verdict.
		data := e.SlashCommandInteractionData()
		if name, ok := data.OptString("quest"); ok && name != "" {
			if err := b.Board.Reset(ctx, name); err != nil {
				if errors.Is(err, board.ErrUnknownQuest) {
					return utils.EH.CreateErrorEmbed(e,
						fmt.Sprintf("'%s' is not a valid quest name.", name))
				}
				slog.Error("Failed to reset quest",
					slog.String("quest", name),
					slog.Any("error", err))
				return utils.EH.CreateErrorEmbed(e, "Failed to reset the quest. Please try again.")
			}
			return utils.EH.CreateSuccessEmbed(e,
				fmt.Sprintf("✅ Quest **%s** has been reset to 'unclaimed'.", name))
		}

		if err := b.Board.ResetAll(ctx); err != nil {
			slog.Error("Failed to reset quest board", slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to reset the board. Please try again.")
		}
		return utils.EH.CreateSuccessEmbed(e, "✅ All quests have been reset to 'unclaimed'.")
	}
}
