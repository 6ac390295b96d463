package person

import (
	"context"
	"sort"

	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/response"
	"cinenacional-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxNameWords is the most words a first or last name may have before review.
const maxNameWords = 3

// ReviewNames lists people whose first or last name has more than three
// words, the ones with the most words first.
func ReviewNames(ctx context.Context, dir Directory) (ReviewResponse, error) {
	candidates, err := dir.ReviewCandidates(ctx)
	if err != nil {
		return ReviewResponse{}, err
	}

	cases := make([]ReviewCase, 0, len(candidates))
	for _, c := range candidates {
		c.FirstNameWords = utils.WordCount(c.FirstName)
		c.LastNameWords = utils.WordCount(c.LastName)
		if c.FirstNameWords > maxNameWords || c.LastNameWords > maxNameWords {
			cases = append(cases, c)
		}
	}
	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].FirstNameWords+cases[i].LastNameWords > cases[j].FirstNameWords+cases[j].LastNameWords
	})
	return ReviewResponse{Cases: cases, Total: len(cases)}, nil
}

func reviewHandler(dir Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := ReviewNames(c.Request.Context(), dir)
		if err != nil {
			log.Error().Err(err).Str("action", "review-names people").Msg("request failed")
			response.Error(c, apperror.Internal(err))
			return
		}
		response.OK(c, res)
	}
}
