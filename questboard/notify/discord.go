// Package notify delivers quest transition events to Discord: the moderation
// channel gets review embeds, the announcement channel gets verdicts with a
// fresh board render, and denied claimers get a DM. Delivery failures are
// logged and swallowed; the transition has already been persisted by the time
// an event reaches this package.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
)

type DiscordNotifier struct {
	client          bot.Client
	board           *board.Board
	renderer        *board.Renderer
	adminChannel    snowflake.ID
	announceChannel snowflake.ID
}

func NewDiscordNotifier(client bot.Client, b *board.Board, renderer *board.Renderer, adminChannel, announceChannel snowflake.ID) *DiscordNotifier {
	return &DiscordNotifier{
		client:          client,
		board:           b,
		renderer:        renderer,
		adminChannel:    adminChannel,
		announceChannel: announceChannel,
	}
}

func (n *DiscordNotifier) Notify(ctx context.Context, ev board.Event) {
	switch ev.Type {
	case board.EventClaimed:
		n.postModeration(ev)
	case board.EventApproved:
		n.announce(ctx, fmt.Sprintf("🎉 Congratulations to %s for completing the **%s** quest! Their claim has been approved.",
			mention(ev.ClaimerID, ev.ClaimerName), ev.Quest))
	case board.EventDenied:
		n.dmClaimer(ev.ClaimerID, fmt.Sprintf("Sorry, your claim for the quest '%s' was denied. The quest is now available again.", ev.Quest))
		n.announce(ctx, fmt.Sprintf("ℹ️ The claim for **%s** by %s was denied. The quest is now open again!",
			ev.Quest, mention(ev.ClaimerID, ev.ClaimerName)))
	case board.EventReset:
		if ev.Quest == "" {
			n.announce(ctx, "The quest board is now clean:")
		} else {
			n.announce(ctx, fmt.Sprintf("🔓 Quest **%s** is open again!", ev.Quest))
		}
	}
}

// postModeration sends the review embed with approve/deny buttons carrying
// the correlation token.
func (n *DiscordNotifier) postModeration(ev board.Event) {
	token := ev.Token.Encode()
	embed := discord.NewEmbedBuilder().
		SetTitle("⏳ New Pending Quest Claim!").
		SetColor(config.PendingColor).
		AddField("Claimer", mention(ev.ClaimerID, ev.ClaimerName), false).
		AddField("Quest", ev.Quest, false).
		SetImage(ev.Proof).
		Build()

	_, err := n.client.Rest().CreateMessage(n.adminChannel, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewSuccessButton("Approve", "/modquest/approve/"+token),
				discord.NewDangerButton("Deny", "/modquest/deny/"+token),
			),
		},
	})
	if err != nil {
		slog.Error("Failed to post moderation embed",
			slog.String("quest", ev.Quest),
			slog.Any("error", err))
	}
}

// announce posts to the announcement channel with a fresh board render
// attached. The board lock is free by the time events arrive here, so the
// snapshot is just another reader.
func (n *DiscordNotifier) announce(ctx context.Context, content string) {
	message := discord.MessageCreate{Content: content}
	if snapshot, err := n.board.Snapshot(ctx); err != nil {
		slog.Error("Failed to snapshot board for announcement", slog.Any("error", err))
	} else if img, err := n.renderer.Render(snapshot); err != nil {
		slog.Error("Failed to render board for announcement", slog.Any("error", err))
	} else {
		message.Files = []*discord.File{{
			Name:   config.BoardFileName,
			Reader: bytes.NewReader(img),
		}}
	}

	if _, err := n.client.Rest().CreateMessage(n.announceChannel, message); err != nil {
		slog.Error("Failed to post announcement", slog.Any("error", err))
	}
}

func (n *DiscordNotifier) dmClaimer(claimerID, content string) {
	id, err := snowflake.Parse(claimerID)
	if err != nil {
		slog.Error("Invalid claimer id for DM", slog.String("claimer_id", claimerID))
		return
	}
	dmChannel, err := n.client.Rest().CreateDMChannel(id)
	if err != nil {
		slog.Error("Failed to create DM channel with claimer",
			slog.String("claimer_id", claimerID),
			slog.Any("error", err))
		return
	}
	if _, err := n.client.Rest().CreateMessage(dmChannel.ID(), discord.MessageCreate{
		Content: content,
	}); err != nil {
		slog.Error("Failed to DM claimer",
			slog.String("claimer_id", claimerID),
			slog.Any("error", err))
	}
}

// mention falls back to a raw ID mention when the recorded display name is
// gone, e.g. a claimer approved after leaving the guild.
func mention(claimerID, claimerName string) string {
	if claimerID != "" {
		return fmt.Sprintf("<@%s>", claimerID)
	}
	return claimerName
}
