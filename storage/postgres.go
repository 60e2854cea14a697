package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"yad2_scraper/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveLead inserts a lead for the given user, idempotent on the source
// site's listing identifier: a duplicate call returns the existing lead_id
// and writes nothing.
func (s *PostgresStore) SaveLead(ctx context.Context, userID int64, lead *models.Lead) (int64, error) {
	var existing int64
	err := s.pool.QueryRow(ctx,
		`SELECT lead_id FROM leads WHERE user_id = $1 AND listing_id = $2`,
		userID, lead.ListingID,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("check existing lead: %w", err)
	}

	query := `
		INSERT INTO leads (
			user_id, listing_id, dedup_hash, title, price, owner_name, phone_number,
			address, property_type, apartment_size, rooms_count, publish_date,
			description, listing_url, status, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 'new', $15
		)
		ON CONFLICT (user_id, listing_id) DO NOTHING
		RETURNING lead_id`

	var leadID int64
	err = s.pool.QueryRow(ctx, query,
		userID, lead.ListingID, lead.ID, lead.Title, lead.Price, lead.OwnerName, lead.PhoneNumber,
		lead.Address, lead.PropertyType, lead.ApartmentSize, lead.RoomsCount, lead.PublishDate,
		lead.Description, lead.ListingURL, lead.ScrapedAt,
	).Scan(&leadID)
	if err == pgx.ErrNoRows {
		// lost the race to a concurrent insert; fetch the winner
		err = s.pool.QueryRow(ctx,
			`SELECT lead_id FROM leads WHERE user_id = $1 AND listing_id = $2`,
			userID, lead.ListingID,
		).Scan(&leadID)
	}
	if err != nil {
		return 0, fmt.Errorf("insert lead: %w", err)
	}

	return leadID, nil
}

// GetActiveSubscribers returns the users the daily run extracts leads for.
func (s *PostgresStore) GetActiveSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	query := `
		SELECT u.user_id, u.email, u.whatsapp_ready
		FROM users u
		JOIN subscriptions s ON u.user_id = s.user_id
		WHERE s.status = 'active' AND s.end_date > NOW()`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.UserID, &sub.Email, &sub.WhatsappReady); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, rows.Err()
}

// MarkMessageSent flags a lead as contacted by the downstream CRM.
func (s *PostgresStore) MarkMessageSent(ctx context.Context, leadID int64) error {
	query := `UPDATE leads SET whatsapp_message_sent = TRUE, updated_at = NOW() WHERE lead_id = $1`
	_, err := s.pool.Exec(ctx, query, leadID)
	return err
}
