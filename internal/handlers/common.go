// common.go
//
// Foodgram, a recipe sharing service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram-project.
// foodgram-project is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram-project is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram-project.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"strconv"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/storage"
	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Store  storage.ImageStore
	Tokens *services.TokenService
}

func (d Deps) pageSize() int {
	if d.Config != nil && d.Config.PageSize > 0 {
		return d.Config.PageSize
	}
	return services.DefaultPageSize
}

func (d Deps) recipesLimit() int {
	if d.Config != nil && d.Config.RecipesLimit >= 0 {
		return d.Config.RecipesLimit
	}
	return services.DefaultRecipesLimit
}

// parseID reads a positive integer path parameter. Anything else is a 404,
// as no object can have that id.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NotFound("Страница не найдена.")
	}
	return id, nil
}

// parseBody decodes a JSON request body into out.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return types.Validation(types.FieldErrors{"non_field_errors": {"Ожидался словарь, но был получен пустой запрос."}})
	}
	if err := c.BodyParser(out); err != nil {
		return types.Validation(types.FieldErrors{"non_field_errors": {"Некорректный JSON: " + err.Error()}})
	}
	return nil
}

// parseFlag reads a 0/1 query flag. "true" and "false" are accepted too.
func parseFlag(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	}
	return false
}

// parseTags extracts tag slugs from query parameters,
// supporting both multiple 'tags' keys and comma-separated values.
func parseTags(c *fiber.Ctx) []string {
	seen := make(map[string]struct{})
	var slugs []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		for _, v := range strings.Split(string(raw), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			slugs = append(slugs, v)
		}
	}
	return slugs
}

// parsePage reads the page and limit query parameters.
func parsePage(c *fiber.Ctx, defaultSize int) (services.Page, error) {
	number := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return services.Page{}, types.NotFound("Неправильная страница")
		}
		number = n
	}
	size := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	return services.NewPage(number, size, defaultSize), nil
}

// paginated renders one page of results with absolute next/previous links.
// A page past the end of a non-empty list is a 404.
func paginated[T any](c *fiber.Ctx, page services.Page, result services.PageResult[T]) error {
	if len(result.Items) == 0 && page.Number > 1 {
		return types.NotFound("Неправильная страница")
	}
	results := result.Items
	if results == nil {
		results = []T{}
	}
	body := utils.Paginated{Count: result.Count, Results: results}
	if result.HasNext(page) {
		body.Next = pageLink(c, page.Number+1)
	}
	if page.Number > 1 {
		body.Previous = pageLink(c, page.Number-1)
	}
	return c.JSON(body)
}

// pageLink rebuilds the request URL with a different page number. Page 1 drops
// the parameter.
func pageLink(c *fiber.Ctx, number int) *string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	c.Context().QueryArgs().CopyTo(args)
	if number <= 1 {
		args.Del("page")
	} else {
		args.Set("page", strconv.Itoa(number))
	}

	link := c.BaseURL() + c.Path()
	if query := args.String(); query != "" {
		link += "?" + query
	}
	return &link
}
