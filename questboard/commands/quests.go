package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/utils"
)

var QuestsCommand = discord.SlashCommandCreate{
	Name:        "quests",
	Description: "📋 List every quest and its current status",
}

func QuestsHandler(b *questboard.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		snapshot, err := b.Board.Snapshot(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the quest board. Please try again.")
		}

		names := b.Board.Names()
		totalPages := (len(names) + config.QuestsPerPage - 1) / config.QuestsPerPage
		if totalPages == 0 {
			totalPages = 1
		}

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * config.QuestsPerPage
				end := min(start+config.QuestsPerPage, len(names))

				var description strings.Builder
				for _, name := range names[start:end] {
					description.WriteString(questLine(name, snapshot[name]))
					description.WriteByte('\n')
				}

				embed.
					SetTitle("Quest Board").
					SetDescription(description.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d quests", page+1, totalPages, len(names)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func questLine(name string, q board.Quest) string {
	switch q.Status {
	case board.StatusPending:
		return fmt.Sprintf("⏳ **%s** — pending review (%s)", name, q.ClaimerName)
	case board.StatusCompleted:
		return fmt.Sprintf("✅ **%s** — completed by %s", name, q.ClaimerName)
	case board.StatusCompletedLegacy:
		return fmt.Sprintf("❌ **%s** — completed (legacy)", name)
	default:
		return fmt.Sprintf("🟢 **%s** — available", name)
	}
}
