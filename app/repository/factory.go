package repository

import (
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Factory builds the repository set for one database handle once and hands
// out the same instances afterwards.
type Factory struct {
	db    *mongo.Database
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory. A nil db yields in-memory
// repositories.
func NewFactory(db *mongo.Database) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns the repository set, creating it on first use
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		if f.db == nil {
			f.repos = NewMemoryRepositories()
			return
		}
		f.repos = NewMongoRepositories(f.db)
	})
	return f.repos
}

// GetReportRepository returns the report repository instance
func (f *Factory) GetReportRepository() ReportRepository {
	return f.GetRepositories().Report
}

// GetCommentRepository returns the comment repository instance
func (f *Factory) GetCommentRepository() CommentRepository {
	return f.GetRepositories().Comment
}

// GetStatusCheckRepository returns the status check repository instance
func (f *Factory) GetStatusCheckRepository() StatusCheckRepository {
	return f.GetRepositories().StatusCheck
}

// NewMongoRepositories wires every repository to db.
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Report:      NewReportRepository(db),
		Comment:     NewCommentRepository(db),
		StatusCheck: NewStatusCheckRepository(db),
	}
}

// NewMemoryRepositories returns process-local repositories for DB_DRIVER=memory
// and tests.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Report:      NewMemoryReportRepository(),
		Comment:     NewMemoryCommentRepository(),
		StatusCheck: NewMemoryStatusCheckRepository(),
	}
}
