package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"haldoor-backend/internal/models"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrAlreadySold      = errors.New("property is already sold")
	ErrSelfPurchase     = errors.New("buyer already owns this property")
)

// PropertyRepo handles property database operations, including the
// ownership-transfer transition.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo creates a new property repository
func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{db: DB}
}

// Create inserts a new listing. Status is always available and no payment
// record exists at creation time.
func (r *PropertyRepo) Create(p *models.Property) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Status = models.StatusAvailable
	p.Payment = nil
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	var image sql.NullString
	if p.Image != "" {
		image = sql.NullString{String: p.Image, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO properties (id, title, description, location, price, image, owner_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Description, p.Location, p.Price, image, p.OwnerID, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

const propertySelect = `
	SELECT p.id, p.title, p.description, p.location, p.price, p.image,
	       p.owner_id, p.status,
	       p.payment_transaction_id, p.payment_amount, p.payment_date, p.payment_buyer_id,
	       p.created_at, p.updated_at,
	       u.id, u.name, u.email
	FROM properties p
	LEFT JOIN users u ON u.id = p.owner_id
`

func scanProperty(row interface{ Scan(...any) error }) (*models.Property, error) {
	p := &models.Property{}
	var image, txnID, buyerID sql.NullString
	var amount sql.NullFloat64
	var date sql.NullTime
	var ownerID, ownerName, ownerEmail sql.NullString

	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Location, &p.Price, &image,
		&p.OwnerID, &p.Status,
		&txnID, &amount, &date, &buyerID,
		&p.CreatedAt, &p.UpdatedAt,
		&ownerID, &ownerName, &ownerEmail,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		p.Image = image.String
	}
	if txnID.Valid {
		p.Payment = &models.Payment{
			TransactionID: txnID.String,
			Amount:        amount.Float64,
			Date:          date.Time,
			BuyerID:       buyerID.String,
		}
	}
	if ownerID.Valid {
		p.Owner = &models.UserSummary{
			ID:    ownerID.String,
			Name:  ownerName.String,
			Email: ownerEmail.String,
		}
	}
	return p, nil
}

// GetByID retrieves a property with its owner resolved for display
func (r *PropertyRepo) GetByID(id string) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRow(propertySelect+"WHERE p.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves all properties, newest first
func (r *PropertyRepo) List() ([]*models.Property, error) {
	rows, err := r.db.Query(propertySelect + "ORDER BY p.created_at DESC, p.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// Update applies a partial patch to the listing fields. All patched fields
// commit together or not at all.
func (r *PropertyRepo) Update(id string, patch models.PropertyPatch) error {
	sets := []string{}
	args := []any{}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *patch.Location)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *patch.Image)
	}
	if len(sets) == 0 {
		// Nothing to patch, but the id must still resolve
		_, err := r.GetByID(id)
		return err
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := "UPDATE properties SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE id = ?"

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// Purchase transfers ownership of an available property to the buyer. The
// transition is a single conditional update evaluated by sqlite: it applies
// only while the row is still available and not owned by the buyer, so two
// racing purchases can never both succeed.
func (r *PropertyRepo) Purchase(id, buyerID string) (*models.Property, error) {
	now := time.Now()
	txnID := "TXN" + strconv.FormatInt(now.UnixNano(), 10)

	result, err := r.db.Exec(`
		UPDATE properties
		SET owner_id = ?,
		    status = 'sold',
		    payment_transaction_id = ?,
		    payment_amount = price,
		    payment_date = ?,
		    payment_buyer_id = ?,
		    updated_at = ?
		WHERE id = ? AND status = 'available' AND owner_id <> ?
	`, buyerID, txnID, now, buyerID, now, id, buyerID)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Precondition failed: re-read to tell why
		p, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if p.Status == models.StatusSold {
			return nil, ErrAlreadySold
		}
		if p.OwnerID == buyerID {
			return nil, ErrSelfPurchase
		}
		return nil, fmt.Errorf("purchase precondition failed for property %s", id)
	}

	return r.GetByID(id)
}

// Delete removes a property. The caller is responsible for releasing the
// associated asset.
func (r *PropertyRepo) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
