package services

import (
	"context"
	"errors"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// DefaultRecipesLimit is the feed preview size when none is requested.
const DefaultRecipesLimit = 3

// ParseRecipesLimit reads a recipes_limit value. Missing, malformed and
// negative values give fallback.
func ParseRecipesLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
		if n > MaxPageSize {
			return MaxPageSize
		}
	}
	return n
}

// Subscribe makes follower follow author id and returns the feed entry of
// the author.
func Subscribe(ctx context.Context, db *gorm.DB, follower *models.User, authorID uint64, recipesLimit int) (SubscriptionView, error) {
	author, err := GetUser(ctx, db, authorID)
	if err != nil {
		return SubscriptionView{}, err
	}
	if author.ID == follower.ID {
		return SubscriptionView{}, types.InvalidOperation("Нельзя подписаться на самого себя.")
	}

	follow := models.Follow{FollowerID: follower.ID, AuthorID: author.ID}
	if err := db.WithContext(ctx).Omit("Follower", "Author").Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return SubscriptionView{}, types.Conflict("Вы уже подписаны на этого пользователя.")
		}
		return SubscriptionView{}, err
	}

	views, err := subscriptionViews(ctx, db, []models.User{*author}, recipesLimit)
	if err != nil {
		return SubscriptionView{}, err
	}
	return views[0], nil
}

// Unsubscribe removes the follow edge from follower to author id.
func Unsubscribe(ctx context.Context, db *gorm.DB, follower *models.User, authorID uint64) error {
	author, err := GetUser(ctx, db, authorID)
	if err != nil {
		return err
	}
	result := db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", follower.ID, author.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Вы не подписаны на этого пользователя.")
	}
	return nil
}

// Subscriptions returns one page of the authors viewer follows, ordered by
// username, each with a recipe preview and recipe count.
func Subscriptions(ctx context.Context, db *gorm.DB, viewer *models.User, page Page, recipesLimit int) (PageResult[SubscriptionView], error) {
	var result PageResult[SubscriptionView]
	base := db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", viewer.ID).
		Session(&gorm.Session{})

	if err := base.Count(&result.Count).Error; err != nil {
		return result, err
	}

	var authors []models.User
	if err := base.Order("users.username").Order("users.id").
		Limit(page.Size).Offset(page.Offset()).
		Find(&authors).Error; err != nil {
		return result, err
	}

	views, err := subscriptionViews(ctx, db, authors, recipesLimit)
	if err != nil {
		return result, err
	}
	result.Items = views
	return result, nil
}

// subscriptionViews builds feed entries for authors the viewer follows with
// one grouped count query and one preview query.
func subscriptionViews(ctx context.Context, db *gorm.DB, authors []models.User, recipesLimit int) ([]SubscriptionView, error) {
	views := make([]SubscriptionView, len(authors))
	if len(authors) == 0 {
		return views, nil
	}

	ids := make([]uint64, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	type countRow struct {
		AuthorID uint64
		Total    int64
	}
	var counts []countRow
	if err := db.WithContext(ctx).Model(&models.Recipe{}).
		Clauses(hints.Comment("select", "subscription_counts")).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	totals := make(map[uint64]int64, len(counts))
	for _, row := range counts {
		totals[row.AuthorID] = row.Total
	}

	previews := make(map[uint64][]RecipeShort, len(authors))
	if recipesLimit > 0 {
		recipes, err := previewRecipes(ctx, db, ids, recipesLimit)
		if err != nil {
			return nil, err
		}
		for i := range recipes {
			authorID := recipes[i].AuthorID
			if len(previews[authorID]) < recipesLimit {
				previews[authorID] = append(previews[authorID], shortOf(&recipes[i]))
			}
		}
	}

	for i := range authors {
		recipes := previews[authors[i].ID]
		if recipes == nil {
			recipes = []RecipeShort{}
		}
		views[i] = SubscriptionView{
			UserProfile:  profileOf(&authors[i], true),
			Recipes:      recipes,
			RecipesCount: totals[authors[i].ID],
		}
	}
	return views, nil
}

// previewRecipes returns at most limit of the newest recipes of each author,
// ranked per author in the database.
func previewRecipes(ctx context.Context, db *gorm.DB, authorIDs []uint64, limit int) ([]models.Recipe, error) {
	ranked := db.Model(&models.Recipe{}).
		Select("id, author_id, name, image, cooking_time, " +
			"ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY pub_date DESC, id DESC) AS preview_rank").
		Where("author_id IN ?", authorIDs)

	var recipes []models.Recipe
	err := db.WithContext(ctx).
		Clauses(hints.Comment("select", "subscription_previews")).
		Table("(?) AS ranked", ranked).
		Select("id", "author_id", "name", "image", "cooking_time").
		Where("preview_rank <= ?", limit).
		Order("author_id").Order("preview_rank").
		Find(&recipes).Error
	return recipes, err
}

// subscribedTo reports which of authorIDs the viewer follows. Anonymous
// viewers follow nobody.
func subscribedTo(ctx context.Context, db *gorm.DB, viewer *models.User, authorIDs []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return set, nil
	}
	var followed []uint64
	if err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id IN ?", viewer.ID, authorIDs).
		Pluck("author_id", &followed).Error; err != nil {
		return nil, err
	}
	for _, id := range followed {
		set[id] = true
	}
	return set, nil
}
