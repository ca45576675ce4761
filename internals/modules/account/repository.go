package account

import (
	"context"
	"errors"

	"taskalive/internals/modules/plan"
	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, accountID uuid.UUID) (Account, error) {
	const op = "repository.account.get_by_id"

	var (
		id   pgtype.UUID
		mail string
		tier string
		sms  pgtype.Text
	)

	err := r.db.QueryRow(ctx,
		`SELECT id, email, plan, sms_number FROM accounts WHERE id = $1`,
		utils.ToPgUUID(accountID),
	).Scan(&id, &mail, &tier, &sms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperror.New(apperror.NotFound, op, err).WithMessage("account not found")
		}
		return Account{}, apperror.New(apperror.Dependency, op, err)
	}

	return Account{
		ID:        utils.FromPgUUID(id),
		Email:     mail,
		Plan:      plan.Tier(tier),
		SMSNumber: utils.FromPgText(sms),
	}, nil
}
