package team

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dhruvpatel-01/fantasyfc/config"
	"github.com/dhruvpatel-01/fantasyfc/internal/common"
	"github.com/dhruvpatel-01/fantasyfc/pkg/responses"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TeamController handles read-only API requests for teams and players.
// Teams and players are only ever mutated through registration (roster
// provisioning) and the market engine.
type TeamController struct {
	repo   TeamRepository
	config *config.Config
}

// NewTeamController creates a new TeamController.
func NewTeamController(repo TeamRepository, cfg *config.Config) *TeamController {
	return &TeamController{
		repo:   repo,
		config: cfg,
	}
}

// --- DTOs ---

type TeamResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Capital    decimal.Decimal `json:"capital"`
	Players    []Player        `json:"players"`
	TotalValue decimal.Decimal `json:"total_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toTeamResponse(t *Team) TeamResponse {
	return TeamResponse{
		ID:         t.ID,
		Name:       t.Name,
		Capital:    t.Capital,
		Players:    t.Players,
		TotalValue: t.TotalValue(),
		CreatedAt:  t.CreatedAt,
	}
}

// --- Team Handlers ---

// GetAllTeams godoc
// @Summary List all teams
// @Description Get a paginated list of all teams with their rosters
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]TeamResponse}
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /teams [get]
// @Security BearerAuth
func (tc *TeamController) GetAllTeams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	teams, total, err := tc.repo.GetAllTeams(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve teams", err.Error())
		return
	}

	data := make([]TeamResponse, len(teams))
	for i := range teams {
		data[i] = toTeamResponse(&teams[i])
	}
	responses.SendPaginated(c, http.StatusOK, "Teams retrieved successfully", data, total, page, limit)
}

// GetTeamByID godoc
// @Summary Get a team by ID
// @Description Get a single team with its roster and total value
// @Tags Teams
// @Produce json
// @Param team_id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
// @Security BearerAuth
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format", nil)
		return
	}

	t, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team", err.Error())
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", toTeamResponse(t))
}

// GetMyTeam godoc
// @Summary Get the authenticated user's team
// @Description Get the requester's own team with roster, capital and total value
// @Tags Teams
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/me [get]
// @Security BearerAuth
func (tc *TeamController) GetMyTeam(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	t, err := tc.repo.GetTeamByUserID(userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team", err.Error())
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", toTeamResponse(t))
}

// --- Player Handlers ---

// GetAllPlayers godoc
// @Summary List all players
// @Description Get a paginated list of all players
// @Tags Players
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Player}
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /players [get]
// @Security BearerAuth
func (tc *TeamController) GetAllPlayers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	players, total, err := tc.repo.GetAllPlayers(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve players", err.Error())
		return
	}

	responses.SendPaginated(c, http.StatusOK, "Players retrieved successfully", players, total, page, limit)
}

// GetPlayerByID godoc
// @Summary Get a player by ID
// @Description Get a single player
// @Tags Players
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Failure 404 {object} responses.ErrorResponse "Player not found"
// @Router /players/{player_id} [get]
// @Security BearerAuth
func (tc *TeamController) GetPlayerByID(c *gin.Context) {
	playerID, err := strconv.ParseUint(c.Param("player_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid player ID format", nil)
		return
	}

	p, err := tc.repo.GetPlayerByID(uint(playerID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve player", err.Error())
		return
	}
	if p == nil {
		responses.NotFound(c, "Player")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Player retrieved successfully", p)
}
