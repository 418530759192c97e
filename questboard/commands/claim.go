package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/utils"
)

var ClaimCommand = discord.SlashCommandCreate{
	Name:        "claim",
	Description: "⏳ Claim a quest by submitting proof for review",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "quest",
			Description:  "The quest you completed",
			Required:     true,
			Autocomplete: true,
		},
		discord.ApplicationCommandOptionAttachment{
			Name:        "proof",
			Description: "Proof of completion (image or video)",
			Required:    false,
		},
	},
}

func ClaimHandler(b *questboard.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		name := strings.ToLower(strings.TrimSpace(data.String("quest")))

		proof := ""
		if attachment, ok := data.OptAttachment("proof"); ok {
			proof = attachment.URL
		}

		res, err := b.Board.Claim(ctx, name, e.User().ID.String(), e.User().EffectiveName(), proof)
		if err != nil {
			slog.Error("Failed to record claim",
				slog.String("quest", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to record your claim. Please try again.")
		}

		if !res.Accepted {
			switch res.Reason {
			case board.RejectUnknownQuest:
				msg := fmt.Sprintf("'%s' is not a valid quest name. Check `/board` and try again.", name)
				if suggestions := suggestQuests(b.Board.Names(), name); suggestions != "" {
					msg += " Did you mean: " + suggestions + "?"
				}
				return utils.EH.CreateErrorEmbed(e, msg)
			case board.RejectMissingProof:
				return utils.EH.CreateErrorEmbed(e, "You must attach proof (an image or video) to your claim!")
			default:
				holder := res.Quest.ClaimerName
				if holder == "" {
					holder = "someone"
				}
				return utils.EH.CreateErrorEmbed(e,
					fmt.Sprintf("Sorry, quest '%s' is already '%s' by %s.", name, res.Quest.Status, holder))
			}
		}

		message := discord.MessageCreate{
			Content: fmt.Sprintf("⏳ %s has tentatively claimed **%s**! Your claim is now under review.",
				e.User().Mention(), name),
		}
		if file, err := renderBoardFile(ctx, b); err != nil {
			slog.Error("Failed to render board after claim", slog.Any("error", err))
		} else {
			message.Files = []*discord.File{file}
		}
		return e.CreateMessage(message)
	}
}

// QuestAutocompleteHandler fuzzy-completes configured quest names.
func QuestAutocompleteHandler(b *questboard.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()

		input := ""
		if focused.Value != nil {
			if err := json.Unmarshal(focused.Value, &input); err != nil {
				return e.AutocompleteResult(nil)
			}
		}
		input = strings.TrimSpace(input)

		names := b.Board.Names()
		if input != "" {
			matches := fuzzy.Find(input, names)
			matched := make([]string, 0, len(matches))
			for _, m := range matches {
				matched = append(matched, m.Str)
			}
			names = matched
		}

		choices := make([]discord.AutocompleteChoice, 0, 25)
		for _, name := range names {
			if len(choices) == 25 {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{Name: name, Value: name})
		}
		return e.AutocompleteResult(choices)
	}
}

func suggestQuests(names []string, input string) string {
	matches := fuzzy.Find(input, names)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, "`"+m.Str+"`")
	}
	return strings.Join(suggestions, ", ")
}
