package repository

import (
	"context"
	"errors"
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/entity"
)

type CareLogsRepository struct {
	conn PgConnection
}

func NewCareLogsRepo(cfg DBConfig) *CareLogsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for careLogsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for careLogsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &CareLogsRepository{
		conn: pool,
	}
}

func NewCareLogsRepoWithConn(conn PgConnection) *CareLogsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for careLogsRepo: " + err.Error())
	}
	return &CareLogsRepository{
		conn: conn,
	}
}

func (cr *CareLogsRepository) Create(ctx context.Context, careLog *entity.CareLog) (uuid.UUID, error) {
	var metadata []byte
	if careLog.Metadata != nil {
		var err error
		metadata, err = sonic.Marshal(careLog.Metadata)
		if err != nil {
			return uuid.UUID{}, errors.New("marshalling care log metadata error: " + err.Error())
		}
	}
	row := cr.conn.QueryRow(ctx,
		`INSERT INTO care_logs (plant_id, care_type, notes, photo, metadata)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at;`,
		careLog.PlantID,
		careLog.CareType,
		careLog.Notes,
		careLog.Photo,
		metadata,
	)
	if err := row.Scan(&careLog.ID, &careLog.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrPlantNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating care log db error: " + err.Error())
	}
	return careLog.ID, nil
}

func (cr *CareLogsRepository) GetByPlantID(ctx context.Context, plantID uuid.UUID, limit, offset int) ([]*entity.CareLog, error) {
	logs := make([]*entity.CareLog, 0)
	rows, err := cr.conn.Query(ctx,
		`SELECT id, plant_id, care_type, notes, photo, metadata, created_at
		FROM care_logs WHERE plant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`,
		plantID, limit, offset)
	if err != nil {
		return nil, errors.New("getting care logs by plant error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		cl := entity.CareLog{}
		var metadata []byte
		err = rows.Scan(&cl.ID, &cl.PlantID, &cl.CareType, &cl.Notes, &cl.Photo, &metadata, &cl.CreatedAt)
		if err != nil {
			return nil, errors.New("unmarhalling care log error: " + err.Error())
		}
		if len(metadata) > 0 {
			cl.Metadata = &entity.CareLogMetadata{}
			if err = sonic.Unmarshal(metadata, cl.Metadata); err != nil {
				return nil, errors.New("unmarhalling care log metadata error: " + err.Error())
			}
		}
		logs = append(logs, &cl)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return logs, nil
}
