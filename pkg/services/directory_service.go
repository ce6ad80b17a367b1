package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/civitas-project/civitas/pkg/models"
)

// nearestCrewLimit caps how many crews a proximity search returns.
const nearestCrewLimit = 5

// DirectoryService answers lookup queries over labels, staff, and crews.
// It backs the dispatcher agent's tool surface as well as the public
// browse endpoints.
type DirectoryService struct {
	store *Store
}

// NewDirectoryService creates a directory service over the store.
func NewDirectoryService(store *Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// SearchLabels returns labels whose name or description matches the search
// term. An empty term returns every label.
func (s *DirectoryService) SearchLabels(ctx context.Context, search string) ([]models.Label, error) {
	var labels []models.Label
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT label_id, label_name, label_description, color_hex
			FROM labels
			WHERE $1 = '' OR label_name ILIKE '%' || $1 || '%'
			   OR label_description ILIKE '%' || $1 || '%'
			ORDER BY label_name`, search)
		if err != nil {
			return fmt.Errorf("failed to query labels: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.Label
			if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.ColorHex); err != nil {
				return fmt.Errorf("failed to scan label: %w", err)
			}
			labels = append(labels, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// SearchStaff returns staff members whose name, email, or phone number
// matches the search term. An empty term returns everyone. Results include
// inactive staff; callers that only want assignable staff filter on status.
func (s *DirectoryService) SearchStaff(ctx context.Context, search string) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT user_id, firstname, lastname, email, phone_number, status, created_at
			FROM civitas_users
			WHERE $1 = '' OR firstname ILIKE '%' || $1 || '%'
			   OR lastname ILIKE '%' || $1 || '%'
			   OR email ILIKE '%' || $1 || '%'
			   OR phone_number ILIKE '%' || $1 || '%'
			ORDER BY lastname, firstname`, search)
		if err != nil {
			return fmt.Errorf("failed to query staff: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m models.StaffMember
			if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Status, &m.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan staff member: %w", err)
			}
			staff = append(staff, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// NearestCrews returns up to nearestCrewLimit crews of the given type,
// ordered by ascending geodesic distance in meters from the query point.
func (s *DirectoryService) NearestCrews(ctx context.Context, lat, lng float64, crewType models.CrewType) ([]models.CrewWithDistance, error) {
	if !crewType.IsValid() {
		return nil, NewValidationError("crew_type", fmt.Sprintf("unknown crew type %q", crewType))
	}

	var crews []models.CrewWithDistance
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT team_id, team_name, crew_type, status,
			       ST_Y(location_coordinates) AS lat,
			       ST_X(location_coordinates) AS lng,
			       ST_Distance(location_coordinates::geography,
			                   ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance
			FROM support_crews
			WHERE crew_type = $3
			  AND status = $4
			  AND location_coordinates IS NOT NULL
			ORDER BY distance ASC
			LIMIT $5`, lng, lat, crewType, models.CrewActive, nearestCrewLimit)
		if err != nil {
			return fmt.Errorf("failed to query crews: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c models.CrewWithDistance
			var loc models.Location
			if err := rows.Scan(&c.ID, &c.Name, &c.CrewType, &c.Status, &loc.Lat, &loc.Lng, &c.Distance); err != nil {
				return fmt.Errorf("failed to scan crew: %w", err)
			}
			c.Location = &loc
			crews = append(crews, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return crews, nil
}
