package main

// testSchema mirrors the six tables of the IMDb corpus.
var testSchema = []string{
	`CREATE TABLE people (
		person_id TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		born      INTEGER,
		died      INTEGER
	)`,
	`CREATE TABLE titles (
		title_id        TEXT PRIMARY KEY,
		type            TEXT,
		primary_title   TEXT,
		original_title  TEXT,
		is_adult        INTEGER,
		premiered       INTEGER,
		ended           INTEGER,
		runtime_minutes INTEGER,
		genres          TEXT
	)`,
	`CREATE TABLE akas (
		title_id          TEXT,
		title             TEXT,
		region            TEXT,
		language          TEXT,
		types             TEXT,
		attributes        TEXT,
		is_original_title INTEGER
	)`,
	`CREATE TABLE crew (
		title_id   TEXT,
		person_id  TEXT,
		category   TEXT,
		job        TEXT,
		characters TEXT
	)`,
	`CREATE TABLE episodes (
		episode_title_id TEXT,
		show_title_id    TEXT,
		season_number    INTEGER,
		episode_number   INTEGER
	)`,
	`CREATE TABLE ratings (
		title_id TEXT PRIMARY KEY,
		rating   REAL,
		votes    INTEGER
	)`,
}

// testFixtures is a small but relationally complete slice of the corpus:
// Tom Hanks with credits across three years (one title without a premiere
// year), a short-lived TV show with two episodes, and ratings for the movies.
var testFixtures = []string{
	`INSERT INTO people (person_id, name, born, died) VALUES
		('nm0000158', 'Tom Hanks', 1956, NULL),
		('nm0000210', 'Julia Roberts', 1967, NULL),
		('nm0000429', 'Nora Ephron', 1941, 2012)`,

	`INSERT INTO titles (title_id, type, primary_title, original_title, is_adult, premiered, ended, runtime_minutes, genres) VALUES
		('tt0109830', 'movie', 'Forrest Gump', 'Forrest Gump', 0, 1994, NULL, 142, 'Drama,Romance'),
		('tt0110357', 'movie', 'The Road Ahead', 'The Road Ahead', 0, 1994, NULL, 101, 'Drama'),
		('tt0114709', 'movie', 'Toy Story', 'Toy Story', 0, 1995, NULL, 81, 'Animation,Comedy'),
		('tt0128853', 'movie', 'You''ve Got Mail', 'You''ve Got Mail', 0, 1998, NULL, 119, 'Comedy,Romance'),
		('tt0200001', 'movie', 'The Lost Reel', 'The Lost Reel', 0, NULL, NULL, 95, 'Drama'),
		('tt0300001', 'tvSeries', 'Harbor Lights', 'Harbor Lights', 0, 1998, 1999, 45, 'Drama')`,

	`INSERT INTO akas (title_id, title, region, language, types, attributes, is_original_title) VALUES
		('tt0109830', 'Forrest Gump', 'US', 'en', 'original', NULL, 1),
		('tt0114709', 'Historia de juguetes', 'AR', 'es', 'imdbDisplay', NULL, 0)`,

	`INSERT INTO crew (title_id, person_id, category, job, characters) VALUES
		('tt0109830', 'nm0000158', 'actor', NULL, '["Forrest Gump"]'),
		('tt0110357', 'nm0000158', 'actor', NULL, NULL),
		('tt0114709', 'nm0000158', 'actor', NULL, '["Woody"]'),
		('tt0128853', 'nm0000158', 'actor', NULL, '["Joe Fox"]'),
		('tt0128853', 'nm0000429', 'director', NULL, NULL),
		('tt0200001', 'nm0000158', 'actor', NULL, NULL),
		('tt0128853', 'nm0000210', 'actress', NULL, NULL)`,

	`INSERT INTO episodes (episode_title_id, show_title_id, season_number, episode_number) VALUES
		('tt0300002', 'tt0300001', 1, 1),
		('tt0300003', 'tt0300001', 1, 2)`,

	`INSERT INTO ratings (title_id, rating, votes) VALUES
		('tt0109830', 8.8, 2100000),
		('tt0114709', 8.3, 1000000),
		('tt0128853', 6.7, 220000)`,
}
