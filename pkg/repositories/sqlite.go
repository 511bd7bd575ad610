package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

// Seed inserts the six board elements and the default scenario list.
// Existing rows are left untouched.
func (r *SQLiteRepository) Seed(ctx context.Context) error {
	for _, element := range DefaultElements() {
		q := `
		INSERT INTO elements (id, name, image_path) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING;
		`
		if _, err := r.db.ExecContext(ctx, q, element.ID, element.Name, element.ImagePath); err != nil {
			return fmt.Errorf("failed to insert element: %v", err)
		}
	}

	for _, scenario := range DefaultScenarios() {
		q := `
		INSERT INTO scenarios (id, name, image_path) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING;
		`
		if _, err := r.db.ExecContext(ctx, q, scenario.ID, scenario.Name, scenario.ImagePath); err != nil {
			return fmt.Errorf("failed to insert scenario: %v", err)
		}
	}

	return nil
}

func (r *SQLiteRepository) CreateCampaign(ctx context.Context, input models.CreateCampaignInput) (*gametypes.Campaign, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "INSERT INTO campaigns (company_name) VALUES (?)", input.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("failed to insert campaign: %v", err)
	}
	campaignID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign id: %v", err)
	}

	for _, player := range input.Players {
		q := `
		INSERT INTO players (campaign_id, name, health_points_max, coins, xp)
		VALUES (?, ?, ?, ?, ?);
		`
		if _, err := tx.ExecContext(ctx, q, campaignID, player.Name, player.HealthPointsMax, player.Coins, player.Xp); err != nil {
			return nil, fmt.Errorf("failed to insert player: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return r.GetCampaign(ctx, int(campaignID))
}

func (r *SQLiteRepository) GetCampaign(ctx context.Context, campaignID int) (*gametypes.Campaign, error) {
	campaign := &gametypes.Campaign{}
	q := "SELECT id, company_name FROM campaigns WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, q, campaignID).Scan(&campaign.ID, &campaign.CompanyName); err != nil {
		if err == sql.ErrNoRows {
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
	WHERE cs.campaign_id = ?;
	`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign scenarios: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		cs := gametypes.CampaignScenario{}
		scenario := gametypes.Scenario{}
		var gameID sql.NullInt64
		if err := rows.Scan(&cs.ID, &cs.CampaignID, &cs.ScenarioID, &cs.IsFinished, &gameID, &scenario.Name, &scenario.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan campaign scenario: %v", err)
		}
		scenario.ID = cs.ScenarioID
		scenario.IsFinished = cs.IsFinished
		if gameID.Valid {
			id := int(gameID.Int64)
			cs.GameID = &id
		}
		cs.Scenario = &scenario
		campaign.CampaignScenarios = append(campaign.CampaignScenarios, cs)
	}

	return campaign, rows.Err()
}

func (r *SQLiteRepository) campaignPlayers(ctx context.Context, campaignID int) ([]gametypes.Player, error) {
	q := "SELECT id, name, health_points_max, coins, xp FROM players WHERE campaign_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, campaignID)
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

func (r *SQLiteRepository) ListCampaigns(ctx context.Context) ([]gametypes.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, company_name FROM campaigns ORDER BY id")
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

func (r *SQLiteRepository) UpdateCampaign(ctx context.Context, campaignID int, companyName string) (*gametypes.Campaign, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE campaigns SET company_name = ? WHERE id = ?", companyName, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return nil, &ErrNotFound{}
	}

	return r.GetCampaign(ctx, campaignID)
}

func (r *SQLiteRepository) DeleteCampaign(ctx context.Context, campaignID int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = ?", campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *SQLiteRepository) ListScenarios(ctx context.Context) ([]gametypes.Scenario, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, image_path FROM scenarios ORDER BY id")
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

func (r *SQLiteRepository) ListElements(ctx context.Context) ([]gametypes.Element, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, image_path FROM elements ORDER BY id")
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

func (r *SQLiteRepository) SaveGame(ctx context.Context, campaignID int, scenarioID int, game *gametypes.Game, elements []models.ElementState) (int, error) {
	stateBlob, err := encodeGameState(elements)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	playerIDsByName := map[string]int{}
	rows, err := tx.QueryContext(ctx, "SELECT id, name FROM players WHERE campaign_id = ?", campaignID)
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
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM campaigns WHERE id = ?", campaignID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check campaign: %v", err)
		}
		if exists == 0 {
			return 0, &ErrNotFound{}
		}
	}

	var existingGameID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT game_id FROM campaign_scenarios WHERE campaign_id = ? AND scenario_id = ?",
		campaignID, scenarioID).Scan(&existingGameID)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query campaign scenario: %v", err)
	}

	var gameID int
	if existingGameID.Valid {
		gameID = int(existingGameID.Int64)

		var deckID int
		if err := tx.QueryRowContext(ctx, "SELECT monster_deck_id FROM games WHERE id = ?", gameID).Scan(&deckID); err != nil {
			return 0, fmt.Errorf("failed to query game deck: %v", err)
		}

		q := "UPDATE decks SET is_shuffled = ?, is_showing_back_card = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, q, game.MonsterDeck.IsShuffled, game.MonsterDeck.IsShowingBackCard, deckID); err != nil {
			return 0, fmt.Errorf("failed to update deck: %v", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE deck_id = ?", deckID); err != nil {
			return 0, fmt.Errorf("failed to delete cards: %v", err)
		}
		if err := insertSQLiteCards(ctx, tx, deckID, &game.MonsterDeck); err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx, "UPDATE games SET game_state = ? WHERE id = ?", stateBlob, gameID); err != nil {
			return 0, fmt.Errorf("failed to update game: %v", err)
		}
	} else {
		q := "INSERT INTO decks (name, is_shuffled, is_showing_back_card) VALUES (?, ?, ?)"
		result, err := tx.ExecContext(ctx, q, game.MonsterDeck.Name, game.MonsterDeck.IsShuffled, game.MonsterDeck.IsShowingBackCard)
		if err != nil {
			return 0, fmt.Errorf("failed to insert deck: %v", err)
		}
		deckID64, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get deck id: %v", err)
		}
		if err := insertSQLiteCards(ctx, tx, int(deckID64), &game.MonsterDeck); err != nil {
			return 0, err
		}

		q = "INSERT INTO games (date_time_started, monster_deck_id, game_state) VALUES (?, ?, ?)"
		result, err = tx.ExecContext(ctx, q, game.DateTimeStarted, deckID64, stateBlob)
		if err != nil {
			return 0, fmt.Errorf("failed to insert game: %v", err)
		}
		gameID64, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get game id: %v", err)
		}
		gameID = int(gameID64)

		q = `
		INSERT INTO campaign_scenarios (campaign_id, scenario_id, game_id) VALUES (?, ?, ?)
		ON CONFLICT (campaign_id, scenario_id) DO UPDATE SET game_id = excluded.game_id;
		`
		if _, err := tx.ExecContext(ctx, q, campaignID, scenarioID, gameID); err != nil {
			return 0, fmt.Errorf("failed to upsert campaign scenario: %v", err)
		}
	}

	for _, player := range game.Players {
		playerID, ok := playerIDsByName[player.Name]
		if !ok {
			continue
		}

		// Coins and max health live on the campaign sheet; total XP does not
		// change until the scenario is completed.
		q := "UPDATE players SET coins = ?, health_points_max = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, q, player.Coins, player.HealthPointsMax, playerID); err != nil {
			return 0, fmt.Errorf("failed to update player: %v", err)
		}

		q = `
		INSERT INTO player_games (game_id, player_id, health_points, scenario_xp) VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, player_id) DO UPDATE SET health_points = excluded.health_points, scenario_xp = excluded.scenario_xp;
		`
		if _, err := tx.ExecContext(ctx, q, gameID, playerID, player.HealthPoints, player.ScenarioXp); err != nil {
			return 0, fmt.Errorf("failed to upsert player game: %v", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM rounds WHERE game_id = ?", gameID); err != nil {
		return 0, fmt.Errorf("failed to delete rounds: %v", err)
	}
	for _, round := range game.Rounds {
		q := "INSERT INTO rounds (game_id, round_number, date_time) VALUES (?, ?, ?)"
		if _, err := tx.ExecContext(ctx, q, gameID, round.RoundNumber, round.DateTime); err != nil {
			return 0, fmt.Errorf("failed to insert round: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return gameID, nil
}

func insertSQLiteCards(ctx context.Context, tx *sql.Tx, deckID int, deck *gametypes.Deck) error {
	q := `
	INSERT INTO cards (deck_id, card_id, value, image_path, need_shuffle, is_temporary, position, in_historic)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	for position, card := range deck.CardsList {
		if _, err := tx.ExecContext(ctx, q, deckID, card.ID, card.Value, card.ImagePath, card.NeedShuffle, card.IsTemporary, position, false); err != nil {
			return fmt.Errorf("failed to insert card: %v", err)
		}
	}
	for position, card := range deck.CardsHistoric {
		if _, err := tx.ExecContext(ctx, q, deckID, card.ID, card.Value, card.ImagePath, card.NeedShuffle, card.IsTemporary, position, true); err != nil {
			return fmt.Errorf("failed to insert card: %v", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) LoadGame(ctx context.Context, campaignID int, scenarioID int) (*gametypes.Game, error) {
	var gameID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT game_id FROM campaign_scenarios WHERE campaign_id = ? AND scenario_id = ?",
		campaignID, scenarioID).Scan(&gameID)
	if err == sql.ErrNoRows || (err == nil && !gameID.Valid) {
		return nil, &ErrNotFound{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign scenario: %v", err)
	}

	game := &gametypes.Game{ID: int(gameID.Int64)}
	var deckID int
	var stateBlob []byte
	q := "SELECT date_time_started, monster_deck_id, game_state FROM games WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, q, game.ID).Scan(&game.DateTimeStarted, &deckID, &stateBlob); err != nil {
		if err == sql.ErrNoRows {
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
	q = "SELECT name, is_shuffled, is_showing_back_card FROM decks WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, q, deckID).Scan(&game.MonsterDeck.Name, &game.MonsterDeck.IsShuffled, &game.MonsterDeck.IsShowingBackCard); err != nil {
		return nil, fmt.Errorf("failed to scan deck: %v", err)
	}

	q = `
	SELECT card_id, value, image_path, need_shuffle, is_temporary, in_historic
	FROM cards WHERE deck_id = ? ORDER BY in_historic, position;
	`
	rows, err := r.db.QueryContext(ctx, q, deckID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	q = `
	SELECT p.id, p.name, p.health_points_max, p.coins, p.xp, pg.health_points, pg.scenario_xp
	FROM player_games pg
	JOIN players p ON p.id = pg.player_id
	WHERE pg.game_id = ?
	ORDER BY p.id;
	`
	playerRows, err := r.db.QueryContext(ctx, q, game.ID)
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
	if err := playerRows.Err(); err != nil {
		return nil, err
	}

	q = "SELECT round_number, date_time FROM rounds WHERE game_id = ? ORDER BY round_number"
	roundRows, err := r.db.QueryContext(ctx, q, game.ID)
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
