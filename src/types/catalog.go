package types

// CardCatalog is an insertion-ordered card index keyed by card id.
// Re-inserting an existing id replaces the card but keeps its original
// position, so iteration order is stable across reloads.
type CardCatalog struct {
	byID  map[string]*Card
	order []string
}

func NewCardCatalog() *CardCatalog {
	return &CardCatalog{byID: map[string]*Card{}}
}

// Put inserts or overwrites a card. Last write wins.
func (c *CardCatalog) Put(card *Card) {
	if _, seen := c.byID[card.ID]; !seen {
		c.order = append(c.order, card.ID)
	}
	c.byID[card.ID] = card
}

func (c *CardCatalog) Get(id string) (*Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

func (c *CardCatalog) Len() int {
	return len(c.byID)
}

// All returns every card in insertion order.
func (c *CardCatalog) All() []*Card {
	cards := make([]*Card, 0, len(c.order))
	for _, id := range c.order {
		cards = append(cards, c.byID[id])
	}
	return cards
}

// SetCatalog is an insertion-ordered set index keyed by set code.
type SetCatalog struct {
	byCode map[string]*Set
	order  []string
}

func NewSetCatalog() *SetCatalog {
	return &SetCatalog{byCode: map[string]*Set{}}
}

func (c *SetCatalog) Put(set *Set) {
	if _, seen := c.byCode[set.Code]; !seen {
		c.order = append(c.order, set.Code)
	}
	c.byCode[set.Code] = set
}

func (c *SetCatalog) Get(code string) (*Set, bool) {
	set, ok := c.byCode[code]
	return set, ok
}

func (c *SetCatalog) Len() int {
	return len(c.byCode)
}

func (c *SetCatalog) All() []*Set {
	sets := make([]*Set, 0, len(c.order))
	for _, code := range c.order {
		sets = append(sets, c.byCode[code])
	}
	return sets
}
