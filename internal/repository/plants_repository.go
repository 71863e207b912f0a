package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/entity"
)

type PlantsRepository struct {
	conn PgConnection
}

func NewPlantsRepo(cfg DBConfig) *PlantsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for plantsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for plantsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &PlantsRepository{
		conn: pool,
	}
}

func NewPlantsRepoWithConn(conn PgConnection) *PlantsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for plantsRepo: " + err.Error())
	}
	return &PlantsRepository{
		conn: conn,
	}
}

func (pr *PlantsRepository) Create(ctx context.Context, plant *entity.Plant) (uuid.UUID, error) {
	row := pr.conn.QueryRow(ctx,
		`INSERT INTO plants (user_id, name, species, water_frequency_days, fertilizer_frequency_days)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at;`,
		plant.UserID,
		plant.Name,
		plant.Species,
		plant.WaterFrequencyDays,
		plant.FertilizerFrequencyDays,
	)
	if err := row.Scan(&plant.ID, &plant.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrUserNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating plant db error: " + err.Error())
	}
	return plant.ID, nil
}

func (pr *PlantsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Plant, error) {
	var plant entity.Plant
	plant.ID = id
	row := pr.conn.QueryRow(ctx,
		`SELECT user_id, name, species, water_frequency_days, fertilizer_frequency_days, last_watered, last_fertilized, created_at
		FROM plants WHERE id = $1;`, id)
	if err := row.Scan(
		&plant.UserID,
		&plant.Name,
		&plant.Species,
		&plant.WaterFrequencyDays,
		&plant.FertilizerFrequencyDays,
		&plant.LastWatered,
		&plant.LastFertilized,
		&plant.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrPlantNotFound
		}
		return nil, errors.New("getting plant by id error: " + err.Error())
	}
	return &plant, nil
}

func (pr *PlantsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Plant, error) {
	plants := make([]*entity.Plant, 0)
	rows, err := pr.conn.Query(ctx,
		`SELECT id, user_id, name, species, water_frequency_days, fertilizer_frequency_days, last_watered, last_fertilized, created_at
		FROM plants WHERE user_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting plants by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		p := entity.Plant{}
		err = rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Species,
			&p.WaterFrequencyDays,
			&p.FertilizerFrequencyDays,
			&p.LastWatered,
			&p.LastFertilized,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, errors.New("unmarhalling plant error: " + err.Error())
		}
		plants = append(plants, &p)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return plants, nil
}

func (pr *PlantsRepository) Update(ctx context.Context, plant *entity.Plant) error {
	ct, err := pr.conn.Exec(ctx,
		`UPDATE plants SET name = $1, species = $2, water_frequency_days = $3, fertilizer_frequency_days = $4 WHERE id = $5;`,
		plant.Name,
		plant.Species,
		plant.WaterFrequencyDays,
		plant.FertilizerFrequencyDays,
		plant.ID,
	)
	if err != nil {
		return errors.New("error updating plant: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrPlantNotFound
	}
	return nil
}

func (pr *PlantsRepository) SetLastCared(ctx context.Context, id uuid.UUID, careType entity.CareType, at time.Time) error {
	var query string
	switch careType {
	case entity.CareWater:
		query = `UPDATE plants SET last_watered = $1 WHERE id = $2;`
	case entity.CareFertilize:
		query = `UPDATE plants SET last_fertilized = $1 WHERE id = $2;`
	default:
		return errorvalues.ErrInvalidCareType
	}
	ct, err := pr.conn.Exec(ctx, query, at, id)
	if err != nil {
		return errors.New("error stamping last care time: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrPlantNotFound
	}
	return nil
}

func (pr *PlantsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := pr.conn.Exec(ctx, `DELETE FROM plants WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting plant: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrPlantNotFound
	}
	return nil
}
