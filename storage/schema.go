package storage

// arrayColumns are stored as text[] on postgres and JSON text on sqlite
var arrayColumns = map[string]bool{
	"requirements": true,
	"benefits":     true,
	"tags":         true,
	"sources":      true,
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	category TEXT NOT NULL,
	experience TEXT NOT NULL,
	salary_min INTEGER,
	salary_max INTEGER,
	salary_currency TEXT,
	salary_period TEXT,
	description TEXT NOT NULL DEFAULT '',
	requirements TEXT[] NOT NULL DEFAULT '{}',
	benefits TEXT[] NOT NULL DEFAULT '{}',
	is_remote BOOLEAN NOT NULL DEFAULT FALSE,
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	application_url TEXT NOT NULL DEFAULT '',
	company_logo TEXT,
	tags TEXT[] NOT NULL DEFAULT '{}',
	slug TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_jobs_active_created ON jobs (is_active, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_slug ON jobs (slug);
CREATE INDEX IF NOT EXISTS idx_jobs_tags ON jobs USING GIN (tags);

CREATE TABLE IF NOT EXISTS job_clicks (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	application_url TEXT NOT NULL,
	clicked_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_agent TEXT,
	referrer TEXT,
	is_valid BOOLEAN,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_job_clicks_job ON job_clicks (job_id);

CREATE TABLE IF NOT EXISTS search_history (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	query TEXT NOT NULL,
	sources TEXT[] NOT NULL DEFAULT '{}',
	result_count INTEGER NOT NULL DEFAULT 0,
	results TEXT,
	imported BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS imported_jobs (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	external_id TEXT NOT NULL,
	source TEXT NOT NULL,
	job_id TEXT NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	category TEXT NOT NULL,
	experience TEXT NOT NULL,
	salary_min INTEGER,
	salary_max INTEGER,
	salary_currency TEXT,
	salary_period TEXT,
	description TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '[]',
	benefits TEXT NOT NULL DEFAULT '[]',
	is_remote BOOLEAN NOT NULL DEFAULT 0,
	is_featured BOOLEAN NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	application_url TEXT NOT NULL DEFAULT '',
	company_logo TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	slug TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_active_created ON jobs (is_active, created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_slug ON jobs (slug);

CREATE TABLE IF NOT EXISTS job_clicks (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	application_url TEXT NOT NULL,
	clicked_at TIMESTAMP NOT NULL,
	user_agent TEXT,
	referrer TEXT,
	is_valid BOOLEAN,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_job_clicks_job ON job_clicks (job_id);

CREATE TABLE IF NOT EXISTS search_history (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	query TEXT NOT NULL,
	sources TEXT NOT NULL DEFAULT '[]',
	result_count INTEGER NOT NULL DEFAULT 0,
	results TEXT,
	imported BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history (user_id, created_at);

CREATE TABLE IF NOT EXISTS imported_jobs (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	external_id TEXT NOT NULL,
	source TEXT NOT NULL,
	job_id TEXT NOT NULL,
	imported_at TIMESTAMP NOT NULL
);
`
