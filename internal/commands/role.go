package commands

import (
	"context"
	"fmt"

	"github.com/C-EO/codebot/internal/discord"
	"github.com/C-EO/codebot/internal/slash"

	"github.com/bwmarrin/discordgo"
)

func roleTargetOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to update", Required: true},
		{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to assign or remove", Required: true},
	}
}

func Role() *slash.Command[string] {
	dm := false
	return slash.New[string](&discordgo.ApplicationCommand{
		Name:         "role",
		Description:  "Manage member roles",
		DMPermission: &dm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Give a role to a member",
				Options:     roleTargetOptions(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Take a role from a member",
				Options:     roleTargetOptions(),
			},
		},
	}).
		SetCategory(categoryModeration).
		SetUsage("/role add|remove <user> <role>").
		SetPermissions(discordgo.PermissionManageRoles).
		SetBotPermissions(discordgo.PermissionManageRoles).
		SetSubCommandHandler("add", roleHandler(true)).
		SetSubCommandHandler("remove", roleHandler(false))
}

func roleHandler(add bool) slash.RunFunc[string] {
	return func(_ context.Context, c slash.Client, i *discordgo.InteractionCreate, opts *slash.Options) (string, error) {
		s := c.Session()
		if i.GuildID == "" {
			return "", discord.RespondEphemeral(s, i, msgGuildOnly)
		}
		userID, okUser := opts.Snowflake("user")
		roleID, okRole := opts.Snowflake("role")
		if !okUser || !okRole {
			return "", discord.RespondEphemeral(s, i, "Both a user and a role are required.")
		}

		if add {
			if err := s.GuildMemberRoleAdd(i.GuildID, userID, roleID); err != nil {
				return "", fmt.Errorf("add role %s to %s: %w", roleID, userID, err)
			}
		} else {
			if err := s.GuildMemberRoleRemove(i.GuildID, userID, roleID); err != nil {
				return "", fmt.Errorf("remove role %s from %s: %w", roleID, userID, err)
			}
		}

		msg := roleMessage(add, userID, roleID)
		return msg, discord.RespondEphemeral(s, i, msg)
	}
}

func roleMessage(add bool, userID, roleID string) string {
	if add {
		return fmt.Sprintf("Gave <@&%s> to <@%s>.", roleID, userID)
	}
	return fmt.Sprintf("Removed <@&%s> from <@%s>.", roleID, userID)
}
