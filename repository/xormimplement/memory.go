package xormimplement

import (
	"fmt"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"xorm.io/builder"
)

type MemoryRepository struct {
	session *Session
}

func NewMemoryRepository(session *Session) repository.MemoryRepository {
	return &MemoryRepository{session: session}
}

func buildMemoryQueryConditions(condition *model.GetMemoriesCondition) builder.Cond {
	var conds []builder.Cond

	if condition.UserID != nil && *condition.UserID != "" {
		conds = append(conds, builder.Eq{entity.MemoryFieldUserID: *condition.UserID})
	}
	if condition.Importance != nil && *condition.Importance != "" {
		conds = append(conds, builder.Eq{entity.MemoryFieldImportance: condition.Importance.String()})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
}

func (r *MemoryRepository) Insert(memory *entity.Memory) error {
	if memory == nil {
		return fmt.Errorf("memory cannot be nil")
	}
	if memory.ID == "" {
		return fmt.Errorf("memory id is required")
	}
	if memory.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	_, err := r.session.Table(entity.TableNameMemory).Insert(memory)
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}

	return nil
}

func (r *MemoryRepository) Get(memoryID string) (*entity.Memory, error) {
	if memoryID == "" {
		return nil, fmt.Errorf("memory id is required")
	}

	result := &entity.Memory{}
	ok, err := r.session.Table(entity.TableNameMemory).
		Where(builder.Eq{entity.MemoryFieldID: memoryID}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *MemoryRepository) List(condition *model.GetMemoriesCondition) ([]*entity.Memory, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildMemoryQueryConditions(condition)

	session := r.session.Table(entity.TableNameMemory)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.MemoryFieldCreatedAt))

	var results []*entity.Memory
	if err := session.Find(&results); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	return results, nil
}

func (r *MemoryRepository) Update(memoryID string, condition *model.UpdateMemoryCondition) error {
	if memoryID == "" {
		return fmt.Errorf("memory id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}

	updateData := make(map[string]interface{})
	if condition.Content != nil {
		updateData[entity.MemoryFieldContent] = *condition.Content
	}
	if condition.Context != nil {
		updateData[entity.MemoryFieldContext] = *condition.Context
	}
	if condition.Importance != nil {
		updateData[entity.MemoryFieldImportance] = *condition.Importance
	}
	if condition.Tags != nil {
		updateData[entity.MemoryFieldTags] = *condition.Tags
	}
	if condition.Embedding != nil {
		updateData[entity.MemoryFieldEmbedding] = *condition.Embedding
	}

	if len(updateData) == 0 {
		return fmt.Errorf("at least one field must be updated")
	}

	_, err := r.session.Table(entity.TableNameMemory).
		Where(builder.Eq{entity.MemoryFieldID: memoryID}).
		Update(updateData)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}

	return nil
}

func (r *MemoryRepository) Delete(memoryID string) error {
	if memoryID == "" {
		return fmt.Errorf("memory id is required")
	}

	_, err := r.session.Table(entity.TableNameMemory).
		Where(builder.Eq{entity.MemoryFieldID: memoryID}).
		Delete(&entity.Memory{})
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}

	return nil
}

func (r *MemoryRepository) Count(userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	total, err := r.session.Table(entity.TableNameMemory).
		Where(builder.Eq{entity.MemoryFieldUserID: userID}).
		Count(&entity.Memory{})
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}

	return total, nil
}

type memoryWithSimilarity struct {
	entity.Memory `xorm:"extends"`
	Similarity    float64 `xorm:"'similarity'"`
}

// VectorSearch ranks a user's memories by pgvector cosine similarity.
// 1 - (embedding <=> query) turns the distance into a score where bigger
// is closer. Rows with a NULL embedding are excluded up front.
func (r *MemoryRepository) VectorSearch(condition *model.VectorSearchCondition) ([]*model.MemorySearchResult, error) {
	if condition == nil {
		return nil, fmt.Errorf("vector search condition cannot be nil")
	}
	if condition.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if condition.QueryVector == "" {
		return nil, fmt.Errorf("query_vector is required")
	}
	if condition.Limit <= 0 {
		condition.Limit = constant.DefaultMemoryLimit
	}

	sql := fmt.Sprintf(`
		SELECT id, user_id, content, context, importance, tags, created_at, updated_at,
		       1 - (embedding <=> '%s'::vector) as similarity
		FROM %s
		WHERE user_id = $1 AND embedding IS NOT NULL
	`, condition.QueryVector, entity.TableNameMemory)

	args := []interface{}{condition.UserID}
	argIndex := 2

	if condition.Threshold != nil {
		sql += fmt.Sprintf(" AND (1 - (embedding <=> '%s'::vector)) >= $%d", condition.QueryVector, argIndex)
		args = append(args, *condition.Threshold)
	}

	sql += fmt.Sprintf(" ORDER BY similarity DESC LIMIT %d", condition.Limit)

	var rows []*memoryWithSimilarity
	if err := r.session.SQL(sql, args...).Find(&rows); err != nil {
		return nil, fmt.Errorf("failed to vector search memories: %w", err)
	}

	results := make([]*model.MemorySearchResult, 0, len(rows))
	for _, row := range rows {
		memory := row.Memory
		results = append(results, &model.MemorySearchResult{
			Memory:     &memory,
			Similarity: row.Similarity,
		})
	}

	return results, nil
}
