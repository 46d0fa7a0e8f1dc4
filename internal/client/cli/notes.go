package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

// noteInput is a note as typed by the user; Tags is comma separated.
type noteInput struct {
	Type, Record, Text, Tags string
}

func (a *App) Notes(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	items, err := a.notes.List(ctx)
	if err != nil {
		return a.report(err)
	}
	a.notesV.SetRecords(items)
	return a.openView(viewNotes, listOptions{})
}

// Note dispatches "note add|edit|rm" from the REPL.
func (a *App) Note(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: note add | note edit <id> | note rm <id>")
		return nil
	}
	switch args[0] {
	case "add":
		in, err := a.promptNote(noteInput{Type: a.defaultNoteType()})
		if err != nil {
			return err
		}
		return a.AddNote(ctx, in)
	case "edit":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "Usage: note edit <id>")
			return nil
		}
		in, err := a.promptNote(a.existingNote(args[1]))
		if err != nil {
			return err
		}
		return a.EditNote(ctx, args[1], in)
	case "rm", "delete":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "Usage: note rm <id>")
			return nil
		}
		return a.DeleteNote(ctx, args[1])
	}
	fmt.Fprintln(a.out, "Unknown note command:", args[0])
	return nil
}

func (a *App) defaultNoteType() string {
	if a.active == viewTess {
		return "tess"
	}
	return "kepler"
}

// existingNote looks id up in the last listing so edit can offer the
// current values as defaults.
func (a *App) existingNote(id string) noteInput {
	for _, n := range a.notesV.Records() {
		if n.ID == id {
			return noteInput{Type: n.DatasetType, Record: n.DatasetID, Text: n.Notes, Tags: strings.Join(n.Tags, ", ")}
		}
	}
	return noteInput{Type: a.defaultNoteType()}
}

func (a *App) promptNote(def noteInput) (noteInput, error) {
	var (
		in  noteInput
		err error
	)
	if in.Type, err = a.in.TextDefault("Dataset (kepler/tess)", def.Type); err != nil {
		return in, err
	}
	if in.Record, err = a.in.TextDefault("Record id", def.Record); err != nil {
		return in, err
	}
	if in.Text, err = a.in.Multiline("Notes"); err != nil {
		return in, err
	}
	if in.Text == "" {
		in.Text = def.Text
	}
	if in.Tags, err = a.in.TextDefault("Tags (comma separated)", def.Tags); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) AddNote(ctx context.Context, in noteInput) error {
	n, err := a.notes.Create(ctx, in.Type, in.Record, in.Text, in.Tags)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Note %s saved.\n", n.ID)
	a.upsertNote(*n)
	return nil
}

func (a *App) EditNote(ctx context.Context, id string, in noteInput) error {
	n, err := a.notes.Update(ctx, id, in.Type, in.Record, in.Text, in.Tags)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Note %s updated.\n", n.ID)
	a.upsertNote(*n)
	return nil
}

func (a *App) DeleteNote(ctx context.Context, id string) error {
	if err := a.notes.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Note %s deleted.\n", id)
	a.removeNote(id)
	return nil
}

// upsertNote and removeNote keep the listed notes current without a
// refetch. The view gets a fresh slice so it recomputes.
func (a *App) upsertNote(n models.Annotation) {
	items := a.notesV.Records()
	for i := range items {
		if items[i].ID == n.ID {
			items[i] = n
			a.notesV.SetRecords(items)
			return
		}
	}
	a.notesV.SetRecords(append(items, n))
}

func (a *App) removeNote(id string) {
	items := a.notesV.Records()
	out := items[:0]
	for _, n := range items {
		if n.ID != id {
			out = append(out, n)
		}
	}
	a.notesV.SetRecords(out)
}
