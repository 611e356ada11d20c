package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
)

// Multi-valued columns (color identity, theme tags) are stored as
// delimiter-joined strings; sqlite has no array type.
const listSeparator = ";"

// SaveCard inserts or updates a card record.
func (db *DB) SaveCard(ctx context.Context, card *pool.Card) error {
	query := `
		INSERT INTO cards (
			name, name_normalized, type_line, mana_cost, mana_value,
			color_identity, theme_tags, rank, last_updated
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP
		)
		ON CONFLICT(name) DO UPDATE SET
			type_line = excluded.type_line,
			mana_cost = excluded.mana_cost,
			mana_value = excluded.mana_value,
			color_identity = excluded.color_identity,
			theme_tags = excluded.theme_tags,
			rank = excluded.rank,
			last_updated = CURRENT_TIMESTAMP
	`

	_, err := db.conn.ExecContext(ctx, query,
		card.Name,
		deck.NormalizeName(card.Name),
		card.TypeLine,
		card.ManaCost,
		card.ManaValue,
		joinList(card.ColorIdentity),
		joinList(card.ThemeTags),
		card.Rank,
	)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	return nil
}

// GetCardByName retrieves a card by name (case-insensitive).
// Returns nil without error when the card is not in the pool.
func (db *DB) GetCardByName(ctx context.Context, name string) (*pool.Card, error) {
	query := `
		SELECT name, type_line, mana_cost, mana_value, color_identity, theme_tags, rank
		FROM cards
		WHERE name_normalized = ?
	`

	row := db.conn.QueryRowContext(ctx, query, deck.NormalizeName(name))
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// AllCards retrieves every card in the pool ordered by relevance rank.
func (db *DB) AllCards(ctx context.Context) ([]*pool.Card, error) {
	query := `
		SELECT name, type_line, mana_cost, mana_value, color_identity, theme_tags, rank
		FROM cards
		ORDER BY rank, name
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []*pool.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// LoadProvider reads the whole pool once and returns an in-memory provider.
// The build pipeline only touches the database at session setup.
func (db *DB) LoadProvider(ctx context.Context) (*pool.MemoryProvider, error) {
	cards, err := db.AllCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load card pool: %w", err)
	}
	return pool.NewMemoryProvider(cards), nil
}

// scanner abstracts sql.Row and sql.Rows for scanCard.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*pool.Card, error) {
	var card pool.Card
	var colorIdentity, themeTags string

	err := row.Scan(
		&card.Name, &card.TypeLine, &card.ManaCost, &card.ManaValue,
		&colorIdentity, &themeTags, &card.Rank,
	)
	if err != nil {
		return nil, err
	}

	card.ColorIdentity = splitList(colorIdentity)
	card.ThemeTags = splitList(themeTags)
	return &card, nil
}

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, listSeparator)
}
