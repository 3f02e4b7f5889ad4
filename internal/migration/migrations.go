package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_table",
			Up: `
				-- Usuários identificados apenas por email
				CREATE TABLE users (
					id SERIAL PRIMARY KEY,
					email VARCHAR(255) UNIQUE NOT NULL,
					first_name VARCHAR(100) NOT NULL,
					created_at TIMESTAMP DEFAULT NOW()
				);
			`,
			Down: `
				DROP TABLE IF EXISTS users;
			`,
		},
		{
			Version: 2,
			Name:    "create_task_tables",
			Up: `
				CREATE TABLE tasks (
					id SERIAL PRIMARY KEY,
					user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					description TEXT NOT NULL,
					due_date DATE,
					estimated_time_minutes INTEGER,
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					raw_input TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP DEFAULT NOW()
				);

				-- Subtarefas são removidas junto com a tarefa pai
				CREATE TABLE subtasks (
					id SERIAL PRIMARY KEY,
					parent_task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
					description TEXT NOT NULL,
					"order" INTEGER NOT NULL DEFAULT 0,
					estimated_time_minutes INTEGER,
					due_date DATE,
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP DEFAULT NOW()
				);
			`,
			Down: `
				DROP TABLE IF EXISTS subtasks;
				DROP TABLE IF EXISTS tasks;
			`,
		},
		{
			Version: 3,
			Name:    "create_shopping_and_calendar_tables",
			Up: `
				CREATE TABLE shopping_items (
					id SERIAL PRIMARY KEY,
					user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					description TEXT NOT NULL,
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					raw_input TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP DEFAULT NOW()
				);

				CREATE TABLE calendar_events (
					id SERIAL PRIMARY KEY,
					user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					description TEXT NOT NULL,
					event_date DATE NOT NULL,
					event_time TIME,
					raw_input TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP DEFAULT NOW()
				);
			`,
			Down: `
				DROP TABLE IF EXISTS calendar_events;
				DROP TABLE IF EXISTS shopping_items;
			`,
		},
		{
			Version: 4,
			Name:    "create_capture_log",
			Up: `
				-- Histórico de capturas rápidas
				CREATE TABLE capture_log (
					id VARCHAR(36) PRIMARY KEY,
					user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					raw_input TEXT NOT NULL,
					should_split BOOLEAN NOT NULL,
					subtask_count INTEGER NOT NULL,
					status VARCHAR(20) NOT NULL,
					task_id INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
					error TEXT,
					created_at TIMESTAMP DEFAULT NOW(),
					CONSTRAINT chk_capture_status CHECK (status IN ('created', 'failed'))
				);
			`,
			Down: `
				DROP TABLE IF EXISTS capture_log;
			`,
		},
		{
			Version: 5,
			Name:    "create_performance_indexes",
			Up: `
				CREATE INDEX idx_tasks_user_created ON tasks(user_id, created_at DESC);
				CREATE INDEX idx_tasks_user_due ON tasks(user_id, due_date);
				CREATE INDEX idx_subtasks_parent_order ON subtasks(parent_task_id, "order");
				CREATE INDEX idx_shopping_items_user ON shopping_items(user_id, created_at DESC);
				CREATE INDEX idx_calendar_events_user_date ON calendar_events(user_id, event_date, event_time);
				CREATE INDEX idx_capture_log_user_created ON capture_log(user_id, created_at DESC);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_capture_log_user_created;
				DROP INDEX IF EXISTS idx_calendar_events_user_date;
				DROP INDEX IF EXISTS idx_shopping_items_user;
				DROP INDEX IF EXISTS idx_subtasks_parent_order;
				DROP INDEX IF EXISTS idx_tasks_user_due;
				DROP INDEX IF EXISTS idx_tasks_user_created;
			`,
		},
	}
}
