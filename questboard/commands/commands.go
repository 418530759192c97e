package commands

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	BoardCommand,
	ClaimCommand,
	QuestsCommand,
	ResetCommand,
}
