package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the persistence surface for roles and membership rows.
type Roles interface {
	repository.Repository[*Role]

	FindByName(ctx context.Context, name string) (*Role, error)
	FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)

	Assign(ctx context.Context, userID, roleID uuid.UUID) error
	AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error

	NamesForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	NamesForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]string, error)
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var (
	_ Roles                        = (*roles)(nil)
	_ repository.Repository[*Role] = (*roles)(nil)
)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

func (a *roles) Create(ctx context.Context, record *Role, criteria ...repository.InsertCriteria) (*Role, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *roles) CreateTx(ctx context.Context, tx bun.IDB, record *Role, criteria ...repository.InsertCriteria) (*Role, error) {
	prepareRoleDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *roles) FindByName(ctx context.Context, name string) (*Role, error) {
	return a.FindByNameTx(ctx, a.db, name)
}

func (a *roles) FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *roles) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	return a.AssignTx(ctx, a.db, userID, roleID)
}

// AssignTx inserts a membership row. Re-assignment is a no-op success so
// callers can repeat grants without checking membership first.
func (a *roles) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	membership := &UserRoleMembership{
		UserID: userID,
		RoleID: roleID,
	}

	_, err := tx.NewInsert().
		Model(membership).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	return err
}

func prepareRoleDefaults(record *Role) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func (a *roles) NamesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return a.NamesForUserTx(ctx, a.db, userID)
}

func (a *roles) NamesForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]string, error) {
	var names []string
	err := tx.NewSelect().
		Model((*UserRoleMembership)(nil)).
		Join(`JOIN "roles" AS "rol" ON "rol"."id" = "usrrol"."role_id"`).
		Where("?TableAlias.user_id = ?", userID).
		ColumnExpr(`"rol"."name"`).
		Order("rol.name ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, err
	}

	return names, nil
}
