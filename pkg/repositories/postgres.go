package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository.
// It returns an error if it is unable to connect to the database.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	if err := conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database); err != nil {
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) Seed(ctx context.Context) error {
	for _, element := range DefaultElements() {
		q := `
		INSERT INTO elements (id, name, image_path) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING;
		`
		if _, err := r.conn.Exec(ctx, q, element.ID, element.Name, element.ImagePath); err != nil {
			return fmt.Errorf("failed to insert element: %v", err)
		}
	}

	for _, scenario := range DefaultScenarios() {
		q := `
		INSERT INTO scenarios (id, name, image_path) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING;
		`
		if _, err := r.conn.Exec(ctx, q, scenario.ID, scenario.Name, scenario.ImagePath); err != nil {
			return fmt.Errorf("failed to insert scenario: %v", err)
		}
	}

	return nil
}

func (r *PostgresRepository) CreateCampaign(ctx context.Context, input models.CreateCampaignInput) (*gametypes.Campaign, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	var campaignID int
	q := "INSERT INTO campaigns (company_name) VALUES ($1) RETURNING id"
	if err := tx.QueryRow(ctx, q, input.CompanyName).Scan(&campaignID); err != nil {
		return nil, fmt.Errorf("failed to insert campaign: %v", err)
	}

	for _, player := range input.Players {
		q := `
		INSERT INTO players (campaign_id, name, health_points_max, coins, xp)
		VALUES ($1, $2, $3, $4, $5);
		`
		if _, err := tx.Exec(ctx, q, campaignID, player.Name, player.HealthPointsMax, player.Coins, player.Xp); err != nil {
			return nil, fmt.Errorf("failed to insert player: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return r.GetCampaign(ctx, campaignID)
}

func (r *PostgresRepository) GetCampaign(ctx context.Context, campaignID int) (*gametypes.Campaign, error) {
	campaign := &gametypes.Campaign{}
	q := "SELECT id, company_name FROM campaigns WHERE id = $1"
	if err := r.conn.QueryRow(ctx, q, campaignID).Scan(&campaign.ID, &campaign.CompanyName); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan campaign: %v", err)
	}

	players, err := r.campaignPlayers(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	campaign.Players = players

	q = `
	SELECT cs.id, cs.campaign_id, cs.scenario_id, cs.is_finished, cs.game_id,
	       s.name, s.image_path
	FROM campaign_scenarios cs
	JOIN scenarios s ON s.id = cs.scenario_id
	WHERE cs.campaign_id = $1;
	`
	rows, err := r.conn.Query(ctx, q, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign scenarios: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		cs := gametypes.CampaignScenario{}
		scenario := gametypes.Scenario{}
		var gameID *int
		if err := rows.Scan(&cs.ID, &cs.CampaignID, &cs.ScenarioID, &cs.IsFinished, &gameID, &scenario.Name, &scenario.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan campaign scenario: %v", err)
		}
		scenario.ID = cs.ScenarioID
		scenario.IsFinished = cs.IsFinished
		cs.GameID = gameID
		cs.Scenario = &scenario
		campaign.CampaignScenarios = append(campaign.CampaignScenarios, cs)
	}

	return campaign, rows.Err()
}

func (r *PostgresRepository) campaignPlayers(ctx context.Context, campaignID int) ([]gametypes.Player, error) {
	q := "SELECT id, name, health_points_max, coins, xp FROM players WHERE campaign_id = $1 ORDER BY id"
	rows, err := r.conn.Query(ctx, q, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	players := []gametypes.Player{}
	for rows.Next() {
		player := gametypes.Player{}
		if err := rows.Scan(&player.ID, &player.Name, &player.HealthPointsMax, &player.Coins, &player.Xp); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}

func (r *PostgresRepository) ListCampaigns(ctx context.Context) ([]gametypes.Campaign, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, company_name FROM campaigns ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %v", err)
	}
	defer rows.Close()

	campaigns := []gametypes.Campaign{}
	for rows.Next() {
		campaign := gametypes.Campaign{}
		if err := rows.Scan(&campaign.ID, &campaign.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %v", err)
		}
		campaigns = append(campaigns, campaign)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range campaigns {
		players, err := r.campaignPlayers(ctx, campaigns[i].ID)
		if err != nil {
			return nil, err
		}
		campaigns[i].Players = players
	}

	return campaigns, nil
}

func (r *PostgresRepository) UpdateCampaign(ctx context.Context, campaignID int, companyName string) (*gametypes.Campaign, error) {
	tag, err := r.conn.Exec(ctx, "UPDATE campaigns SET company_name = $1 WHERE id = $2", companyName, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ErrNotFound{}
	}

	return r.GetCampaign(ctx, campaignID)
}

func (r *PostgresRepository) DeleteCampaign(ctx context.Context, campaignID int) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM campaigns WHERE id = $1", campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *PostgresRepository) ListScenarios(ctx context.Context) ([]gametypes.Scenario, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, name, image_path FROM scenarios ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %v", err)
	}
	defer rows.Close()

	scenarios := []gametypes.Scenario{}
	for rows.Next() {
		scenario := gametypes.Scenario{}
		if err := rows.Scan(&scenario.ID, &scenario.Name, &scenario.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %v", err)
		}
		scenarios = append(scenarios, scenario)
	}

	return scenarios, rows.Err()
}

func (r *PostgresRepository) ListElements(ctx context.Context) ([]gametypes.Element, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, name, image_path FROM elements ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query elements: %v", err)
	}
	defer rows.Close()

	elements := []gametypes.Element{}
	for rows.Next() {
		element := gametypes.Element{}
		if err := rows.Scan(&element.ID, &element.Name, &element.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan element: %v", err)
		}
		elements = append(elements, element)
	}

	return elements, rows.Err()
}

func (r *PostgresRepository) SaveGame(ctx context.Context, campaignID int, scenarioID int, game *gametypes.Game, elements []models.ElementState) (int, error) {
	stateBlob, err := encodeGameState(elements)
	if err != nil {
		return 0, err
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	playerIDsByName := map[string]int{}
	rows, err := tx.Query(ctx, "SELECT id, name FROM players WHERE campaign_id = $1", campaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to query campaign players: %v", err)
	}
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan player: %v", err)
		}
		playerIDsByName[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(playerIDsByName) == 0 {
		var exists int
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM campaigns WHERE id = $1", campaignID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check campaign: %v", err)
		}
		if exists == 0 {
			return 0, &ErrNotFound{}
		}
	}

	var existingGameID *int
	err = tx.QueryRow(ctx,
		"SELECT game_id FROM campaign_scenarios WHERE campaign_id = $1 AND scenario_id = $2",
		campaignID, scenarioID).Scan(&existingGameID)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("failed to query campaign scenario: %v", err)
	}

	var gameID int
	if existingGameID != nil {
		gameID = *existingGameID

		var deckID int
		if err := tx.QueryRow(ctx, "SELECT monster_deck_id FROM games WHERE id = $1", gameID).Scan(&deckID); err != nil {
			return 0, fmt.Errorf("failed to query game deck: %v", err)
		}

		q := "UPDATE decks SET is_shuffled = $1, is_showing_back_card = $2 WHERE id = $3"
		if _, err := tx.Exec(ctx, q, game.MonsterDeck.IsShuffled, game.MonsterDeck.IsShowingBackCard, deckID); err != nil {
			return 0, fmt.Errorf("failed to update deck: %v", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM cards WHERE deck_id = $1", deckID); err != nil {
			return 0, fmt.Errorf("failed to delete cards: %v", err)
		}
		if err := insertPostgresCards(ctx, tx, deckID, &game.MonsterDeck); err != nil {
			return 0, err
		}

		if _, err := tx.Exec(ctx, "UPDATE games SET game_state = $1 WHERE id = $2", stateBlob, gameID); err != nil {
			return 0, fmt.Errorf("failed to update game: %v", err)
		}
	} else {
		var deckID int
		q := "INSERT INTO decks (name, is_shuffled, is_showing_back_card) VALUES ($1, $2, $3) RETURNING id"
		if err := tx.QueryRow(ctx, q, game.MonsterDeck.Name, game.MonsterDeck.IsShuffled, game.MonsterDeck.IsShowingBackCard).Scan(&deckID); err != nil {
			return 0, fmt.Errorf("failed to insert deck: %v", err)
		}
		if err := insertPostgresCards(ctx, tx, deckID, &game.MonsterDeck); err != nil {
			return 0, err
		}

		q = "INSERT INTO games (date_time_started, monster_deck_id, game_state) VALUES ($1, $2, $3) RETURNING id"
		if err := tx.QueryRow(ctx, q, game.DateTimeStarted, deckID, stateBlob).Scan(&gameID); err != nil {
			return 0, fmt.Errorf("failed to insert game: %v", err)
		}

		q = `
		INSERT INTO campaign_scenarios (campaign_id, scenario_id, game_id) VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, scenario_id) DO UPDATE SET game_id = excluded.game_id;
		`
		if _, err := tx.Exec(ctx, q, campaignID, scenarioID, gameID); err != nil {
			return 0, fmt.Errorf("failed to upsert campaign scenario: %v", err)
		}
	}

	for _, player := range game.Players {
		playerID, ok := playerIDsByName[player.Name]
		if !ok {
			continue
		}

		q := "UPDATE players SET coins = $1, health_points_max = $2 WHERE id = $3"
		if _, err := tx.Exec(ctx, q, player.Coins, player.HealthPointsMax, playerID); err != nil {
			return 0, fmt.Errorf("failed to update player: %v", err)
		}

		q = `
		INSERT INTO player_games (game_id, player_id, health_points, scenario_xp) VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, player_id) DO UPDATE SET health_points = excluded.health_points, scenario_xp = excluded.scenario_xp;
		`
		if _, err := tx.Exec(ctx, q, gameID, playerID, player.HealthPoints, player.ScenarioXp); err != nil {
			return 0, fmt.Errorf("failed to upsert player game: %v", err)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM rounds WHERE game_id = $1", gameID); err != nil {
		return 0, fmt.Errorf("failed to delete rounds: %v", err)
	}
	for _, round := range game.Rounds {
		q := "INSERT INTO rounds (game_id, round_number, date_time) VALUES ($1, $2, $3)"
		if _, err := tx.Exec(ctx, q, gameID, round.RoundNumber, round.DateTime); err != nil {
			return 0, fmt.Errorf("failed to insert round: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return gameID, nil
}

func insertPostgresCards(ctx context.Context, tx pgx.Tx, deckID int, deck *gametypes.Deck) error {
	q := `
	INSERT INTO cards (deck_id, card_id, value, image_path, need_shuffle, is_temporary, position, in_historic)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for position, card := range deck.CardsList {
		if _, err := tx.Exec(ctx, q, deckID, card.ID, card.Value, card.ImagePath, card.NeedShuffle, card.IsTemporary, position, false); err != nil {
			return fmt.Errorf("failed to insert card: %v", err)
		}
	}
	for position, card := range deck.CardsHistoric {
		if _, err := tx.Exec(ctx, q, deckID, card.ID, card.Value, card.ImagePath, card.NeedShuffle, card.IsTemporary, position, true); err != nil {
			return fmt.Errorf("failed to insert card: %v", err)
		}
	}
	return nil
}

func (r *PostgresRepository) LoadGame(ctx context.Context, campaignID int, scenarioID int) (*gametypes.Game, error) {
	var gameID *int
	err := r.conn.QueryRow(ctx,
		"SELECT game_id FROM campaign_scenarios WHERE campaign_id = $1 AND scenario_id = $2",
		campaignID, scenarioID).Scan(&gameID)
	if err == pgx.ErrNoRows || (err == nil && gameID == nil) {
		return nil, &ErrNotFound{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign scenario: %v", err)
	}

	game := &gametypes.Game{ID: *gameID}
	var deckID int
	var stateBlob []byte
	q := "SELECT date_time_started, monster_deck_id, game_state FROM games WHERE id = $1"
	if err := r.conn.QueryRow(ctx, q, game.ID).Scan(&game.DateTimeStarted, &deckID, &stateBlob); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan game: %v", err)
	}

	elements, err := decodeGameState(stateBlob)
	if err != nil {
		return nil, err
	}
	if elements != nil {
		stateJSON, err := json.Marshal(savedGameState{Elements: elements})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal game state: %v", err)
		}
		game.GameState = string(stateJSON)
	}

	game.MonsterDeck.ID = deckID
	q = "SELECT name, is_shuffled, is_showing_back_card FROM decks WHERE id = $1"
	if err := r.conn.QueryRow(ctx, q, deckID).Scan(&game.MonsterDeck.Name, &game.MonsterDeck.IsShuffled, &game.MonsterDeck.IsShowingBackCard); err != nil {
		return nil, fmt.Errorf("failed to scan deck: %v", err)
	}

	q = `
	SELECT card_id, value, image_path, need_shuffle, is_temporary, in_historic
	FROM cards WHERE deck_id = $1 ORDER BY in_historic, position;
	`
	rows, err := r.conn.Query(ctx, q, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		card := gametypes.Card{}
		var inHistoric bool
		if err := rows.Scan(&card.ID, &card.Value, &card.ImagePath, &card.NeedShuffle, &card.IsTemporary, &inHistoric); err != nil {
			return nil, fmt.Errorf("failed to scan card: %v", err)
		}
		if inHistoric {
			game.MonsterDeck.CardsHistoric = append(game.MonsterDeck.CardsHistoric, card)
		} else {
			game.MonsterDeck.CardsList = append(game.MonsterDeck.CardsList, card)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	q = `
	SELECT p.id, p.name, p.health_points_max, p.coins, p.xp, pg.health_points, pg.scenario_xp
	FROM player_games pg
	JOIN players p ON p.id = pg.player_id
	WHERE pg.game_id = $1
	ORDER BY p.id;
	`
	playerRows, err := r.conn.Query(ctx, q, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player games: %v", err)
	}
	defer playerRows.Close()

	for playerRows.Next() {
		playerGame := gametypes.PlayerGame{}
		if err := playerRows.Scan(&playerGame.ID, &playerGame.Name, &playerGame.HealthPointsMax, &playerGame.Coins, &playerGame.Xp, &playerGame.HealthPoints, &playerGame.ScenarioXp); err != nil {
			return nil, fmt.Errorf("failed to scan player game: %v", err)
		}
		game.Players = append(game.Players, playerGame)
	}
	playerRows.Close()
	if err := playerRows.Err(); err != nil {
		return nil, err
	}

	q = "SELECT round_number, date_time FROM rounds WHERE game_id = $1 ORDER BY round_number"
	roundRows, err := r.conn.Query(ctx, q, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %v", err)
	}
	defer roundRows.Close()

	for roundRows.Next() {
		round := gametypes.Round{}
		if err := roundRows.Scan(&round.RoundNumber, &round.DateTime); err != nil {
			return nil, fmt.Errorf("failed to scan round: %v", err)
		}
		game.Rounds = append(game.Rounds, round)
	}

	return game, roundRows.Err()
}
