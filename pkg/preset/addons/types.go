// Package addons contains one transformer per integrated addon
// service. A transformer takes the base addon entry selected from the
// preset document plus the shared request context and decides whether
// the entry stays untouched, is rewritten in place, is removed, or
// fans out into one renamed entry per debrid credential.
package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// Context is the immutable per-composition request context shared by
// every transformer.
type Context struct {
	Language          string
	No4K              bool
	Cached            bool
	Limit             int
	MaxSize           string // user-facing max size in GB, empty for none
	Debrid            []debrid.Entry
	DebridServiceName string
	Preset            string
	Password          string
	Advanced          Advanced
}

// Advanced holds the optional power-user keys.
type Advanced struct {
	RPDBKey string
	TMDBKey string
}

// Action describes what the composer should do with a transformer's
// result.
type Action int

const (
	ActionUnchanged Action = iota
	ActionRemoved
	ActionMutated
	ActionFannedOut
)

// Clone is one fan-out replacement entry.
type Clone struct {
	Key   string
	Addon stremio.Addon
}

// Result is the outcome of one transformer run.
type Result struct {
	Action Action
	Reason string        // set for ActionRemoved, to make removals auditable
	Addon  stremio.Addon // set for ActionMutated
	Clones []Clone       // set for ActionFannedOut, in credential order
}

func Unchanged() Result { return Result{Action: ActionUnchanged} }

func Removed(reason string) Result { return Result{Action: ActionRemoved, Reason: reason} }

func Mutated(addon stremio.Addon) Result { return Result{Action: ActionMutated, Addon: addon} }

func FannedOut(clones []Clone) Result { return Result{Action: ActionFannedOut, Clones: clones} }

// Transformer is the uniform per-addon contract. Transformers never
// fail the composition: every internal failure is converted to
// ActionRemoved for their own addon.
type Transformer interface {
	// Key is the addon key this transformer owns in the preset config.
	Key() string
	Transform(ctx context.Context, addon stremio.Addon, rc Context) Result
}

// suffixManifestName appends " | <name>" to the entry's display name,
// if it has one.
func suffixManifestName(addon *stremio.Addon, name string) {
	if name == "" || addon.Manifest == nil || addon.Manifest.Name == "" {
		return
	}
	addon.Manifest.Name += " | " + name
}

// fanOutDebrid applies the uniform fan-out rule for debrid-capable
// transformers. With one credential the base entry is mutated in place
// and keeps its key; with two or more, one clone per credential is
// produced, keyed "<baseKey>_<service>" and spliced into the base
// key's position by the composer. configure rewrites one clone for one
// credential; a configure failure drops that clone (and with it the
// whole addon in the single-credential case).
func fanOutDebrid(baseKey string, base stremio.Addon, entries []debrid.Entry, suffixName bool, configure func(addon *stremio.Addon, e debrid.Entry) error) Result {
	if len(entries) == 0 {
		return Removed("no debrid credential supplied")
	}

	if len(entries) == 1 {
		addon := base.Clone()
		if err := configure(&addon, entries[0]); err != nil {
			return Removed(err.Error())
		}
		if suffixName {
			suffixManifestName(&addon, debrid.ShortName(entries[0].Service))
		}
		return Mutated(addon)
	}

	clones := make([]Clone, 0, len(entries))
	for _, e := range entries {
		addon := base.Clone()
		if err := configure(&addon, e); err != nil {
			continue
		}
		if suffixName {
			suffixManifestName(&addon, debrid.ShortName(e.Service))
		}
		clones = append(clones, Clone{Key: baseKey + "_" + string(e.Service), Addon: addon})
	}
	if len(clones) == 0 {
		return Removed("no credential produced a usable configuration")
	}
	return FannedOut(clones)
}
