package loader

import (
	"fmt"

	"github.com/deckfort/cardtable-engine-go/src/gamedef"
	"github.com/deckfort/cardtable-engine-go/src/records"
	"github.com/deckfort/cardtable-engine-go/src/types"
)

// parseCards reads a card document and materializes every record into the
// catalog. defaultSet is used for cards omitting the configured set field.
func (l *Loader) parseCards(g *gamedef.CardGame, path, defaultSet string) error {
	recs, err := l.readRecords(path)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		materializeCard(g, rec, defaultSet)
	}
	return nil
}

// parseSets reads a set document and materializes every record, recursing
// into embedded card lists.
func (l *Loader) parseSets(g *gamedef.CardGame, path string) error {
	recs, err := l.readRecords(path)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		materializeSet(g, rec)
	}
	return nil
}

func (l *Loader) readRecords(path string) ([]records.Record, error) {
	data, err := l.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	recs, err := records.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return recs, nil
}

// materializeCard builds a card from one generic record using the game's
// configured field names. Records lacking an id are discarded silently.
// Successful cards overwrite any previous card with the same id and
// auto-create their set when unseen.
func materializeCard(g *gamedef.CardGame, rec records.Record, defaultSet string) {
	id := rec.String(g.CardIDIdentifier)
	if id == "" {
		return
	}

	name := rec.String(g.CardNameIdentifier)
	setCode := rec.String(g.CardSetIdentifier)
	if setCode == "" {
		setCode = defaultSet
	}

	// Every declared property gets an entry; missing keys become "".
	properties := make(map[string]string, len(g.CardProperties))
	for _, p := range g.CardProperties {
		properties[p.Name] = rec.String(p.Name)
	}

	g.PutCard(types.NewCard(id, name, setCode, properties))
}

// materializeSet builds a set from one generic record. Records lacking a
// code are discarded. Embedded card lists recurse into card materialization
// with the enclosing set's code as default.
func materializeSet(g *gamedef.CardGame, rec records.Record) {
	code := rec.String(g.SetCodeIdentifier)
	if code == "" {
		return
	}

	name := rec.String(g.SetNameIdentifier)
	if name == "" {
		name = code
	}

	g.Sets.Put(&types.Set{
		Code:     code,
		Name:     name,
		CardsURL: rec.String(g.SetCardsURLIdentifier),
	})

	if rec.Has(g.SetCardsIdentifier) {
		for _, cardRec := range records.NormalizeList(rec[g.SetCardsIdentifier]) {
			materializeCard(g, cardRec, code)
		}
	}
}
