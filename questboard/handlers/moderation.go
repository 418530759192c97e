package handlers

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/Richiks1/questboard/questboard"
	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
	"github.com/Richiks1/questboard/questboard/utils"
)

// ModerationHandler resolves a pending claim from the approve/deny buttons on
// the moderation embed. The correlation token travels inside the button
// custom ID, so a restarted process can still resolve claims issued before
// the restart.
func ModerationHandler(b *questboard.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		action := e.Vars["action"]
		token := e.Vars["token"]

		var decision board.Decision
		switch action {
		case "approve":
			decision = board.DecisionApprove
		case "deny":
			decision = board.DecisionDeny
		default:
			return fmt.Errorf("unknown moderation action %q", action)
		}

		member := e.Member()
		authorized := member != nil && b.IsModerator(*member)

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		res, err := b.Board.Resolve(ctx, token, decision,
			e.User().ID.String(), e.User().EffectiveName(), authorized)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to resolve the claim. Please try again.")
		}

		if !res.Applied {
			switch res.Reason {
			case board.IgnoreNotAuthorized:
				return utils.EH.CreateEphemeralError(e, "Only moderators can resolve quest claims.")
			case board.IgnoreBadToken:
				return utils.EH.CreateEphemeralError(e, "This claim can no longer be matched to a quest.")
			default:
				return utils.EH.CreateEphemeralError(e, "This claim was already resolved, or the quest has been reset.")
			}
		}

		return e.UpdateMessage(verdictUpdate(e, decision))
	}
}

// verdictUpdate rewrites the moderation embed with the verdict and strips
// the buttons so the decision cannot be clicked twice.
func verdictUpdate(e *handler.ComponentEvent, decision board.Decision) discord.MessageUpdate {
	var embed discord.Embed
	if len(e.Message.Embeds) > 0 {
		embed = e.Message.Embeds[0]
	}
	if decision == board.DecisionApprove {
		embed.Title = "✅ Quest Claim Approved"
		embed.Color = config.ApprovedColor
	} else {
		embed.Title = "❌ Quest Claim Denied"
		embed.Color = config.DeniedColor
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{
		Name:  "Moderator",
		Value: e.User().Mention(),
	})

	return discord.MessageUpdate{
		Embeds:     &[]discord.Embed{embed},
		Components: &[]discord.ContainerComponent{},
	}
}
