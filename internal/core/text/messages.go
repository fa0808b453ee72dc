package text

import (
	"fmt"
	"sort"
)

// Message ids accepted by Messages.Override.
const (
	MsgVersion             = "version"
	MsgNoLocation          = "no_location"
	MsgSpawnSuccess        = "spawn_success"
	MsgSpawnFailed         = "spawn_failed"
	MsgNotAnNPC            = "not_an_npc"
	MsgUpdatedTraits       = "updated_traits"
	MsgUpdatedProps        = "updated_props"
	MsgUnsupportedPropType = "unsupported_prop_type"
	MsgSkinNotFound        = "skin_not_found"
	MsgNone                = "none"
	MsgDefaultDisplayName  = "default_display_name"
)

// Messages is the catalogue of user-facing texts.
type Messages struct {
	Version             Template
	NoLocation          Template
	SpawnSuccess        Template
	SpawnFailed         Template
	NotAnNPC            Template
	UpdatedTraits       Template
	UpdatedProps        Template
	UnsupportedPropType Template
	SkinNotFound        Template

	None               Text
	DefaultDisplayName Text
}

func DefaultMessages() Messages {
	return Messages{
		Version:             NewTemplate("&e{plugin.name} &7v{plugin.version}"),
		NoLocation:          NewTemplate("&cA location is required when not run by a player."),
		SpawnSuccess:        NewTemplate("&aSpawned NPC &f{npc.displayName} &7({npc.entity.type} {npc.entity.uuid}) &aowned by &f{npc.owner}"),
		SpawnFailed:         NewTemplate("&cCould not spawn NPC."),
		NotAnNPC:            NewTemplate("&cThat entity is not an NPC."),
		UpdatedTraits:       NewTemplate("&aUpdated &f{amount} &atrait(s)."),
		UpdatedProps:        NewTemplate("&aUpdated &f{amount} &aproperty(ies)."),
		UnsupportedPropType: NewTemplate("&cUnsupported value for property &f{property}&c."),
		SkinNotFound:        NewTemplate("&cSkin not found."),
		None:                FromFormattingCode("&7none"),
		DefaultDisplayName:  FromFormattingCode("NPC"),
	}
}

// Override replaces messages by id. Unknown ids are reported together so a
// misspelt config key is not silently ignored.
func (m Messages) Override(raw map[string]string) (Messages, error) {
	var unknown []string
	for id, value := range raw {
		switch id {
		case MsgVersion:
			m.Version = NewTemplate(value)
		case MsgNoLocation:
			m.NoLocation = NewTemplate(value)
		case MsgSpawnSuccess:
			m.SpawnSuccess = NewTemplate(value)
		case MsgSpawnFailed:
			m.SpawnFailed = NewTemplate(value)
		case MsgNotAnNPC:
			m.NotAnNPC = NewTemplate(value)
		case MsgUpdatedTraits:
			m.UpdatedTraits = NewTemplate(value)
		case MsgUpdatedProps:
			m.UpdatedProps = NewTemplate(value)
		case MsgUnsupportedPropType:
			m.UnsupportedPropType = NewTemplate(value)
		case MsgSkinNotFound:
			m.SkinNotFound = NewTemplate(value)
		case MsgNone:
			m.None = FromFormattingCode(value)
		case MsgDefaultDisplayName:
			m.DefaultDisplayName = FromFormattingCode(value)
		default:
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return m, fmt.Errorf("unknown message ids: %v", unknown)
	}
	return m, nil
}
