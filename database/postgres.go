package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samu777684/financial360/config"
)

var Pool *pgxpool.Pool

func InitDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var err error
	Pool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := Pool.Ping(context.Background()); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	log.Println("✅ Conexión a PostgreSQL establecida")
	if err := createUsersTables(); err != nil {
		return fmt.Errorf("failed to create user tables: %w", err)
	}
	if err := createPlanTables(); err != nil {
		return fmt.Errorf("failed to create plan tables: %w", err)
	}
	if err := createPaymentTables(); err != nil {
		return fmt.Errorf("failed to create payment tables: %w", err)
	}
	if err := createReferralTables(); err != nil {
		return fmt.Errorf("failed to create referral tables: %w", err)
	}
	if err := createTwoFATable(); err != nil {
		return fmt.Errorf("failed to create twofa table: %w", err)
	}
	if err := seedPlans(); err != nil {
		return err
	}
	return nil
}

func CloseDB() {
	if Pool != nil {
		Pool.Close()
		log.Println("🛑 Conexión a PostgreSQL cerrada")
	}
}

func createUsersTables() error {
	_, err := Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS usuarios (
            id BIGSERIAL PRIMARY KEY,
            nombre VARCHAR(100) NOT NULL,
            correo VARCHAR(255) UNIQUE NOT NULL,
            contrasena VARCHAR(255) NOT NULL,
            rol VARCHAR(20) NOT NULL DEFAULT 'usuario',
            referido_por BIGINT REFERENCES usuarios(id),
            codigo_referido VARCHAR(36) UNIQUE NOT NULL,
            activo BOOLEAN DEFAULT true,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE INDEX IF NOT EXISTS idx_usuarios_correo ON usuarios(correo);
        CREATE INDEX IF NOT EXISTS idx_usuarios_referido_por ON usuarios(referido_por);
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS perfil_usuario (
            id BIGSERIAL PRIMARY KEY,
            id_usuario BIGINT UNIQUE NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
            nombre_completo VARCHAR(255) NOT NULL,
            cedula VARCHAR(50) NOT NULL,
            telefono VARCHAR(50),
            pais VARCHAR(100),
            ciudad VARCHAR(100),
            codigo_postal VARCHAR(20),
            banco VARCHAR(100) NOT NULL,
            tipo_cuenta VARCHAR(50) NOT NULL,
            numero_cuenta VARCHAR(50) NOT NULL,
            titular_cuenta VARCHAR(255) NOT NULL,
            fecha_creacion TIMESTAMP DEFAULT NOW(),
            fecha_actualizacion TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	log.Println("✅ Tablas usuarios y perfil_usuario listas")
	return nil
}

func createPlanTables() error {
	// Todos los montos se guardan en centavos (BIGINT), nunca en flotantes.
	_, err := Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS planes (
            id SERIAL PRIMARY KEY,
            nombre VARCHAR(100) NOT NULL,
            descripcion TEXT,
            precio_centavos BIGINT NOT NULL,
            moneda VARCHAR(3) DEFAULT 'COP',
            duracion_dias INTEGER NOT NULL DEFAULT 30,
            caracteristicas JSONB NOT NULL DEFAULT '[]',
            activo BOOLEAN DEFAULT true,
            orden INTEGER DEFAULT 0,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	log.Println("✅ Tabla planes lista")
	return nil
}

func createPaymentTables() error {
	// payment_id y external_reference únicos: la deduplicación del webhook
	// es por restricción, no por leer-y-escribir.
	_, err := Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS transacciones (
            id BIGSERIAL PRIMARY KEY,
            id_usuario BIGINT REFERENCES usuarios(id),
            plan_id INTEGER NOT NULL REFERENCES planes(id),
            preference_id VARCHAR(100),
            payment_id BIGINT UNIQUE,
            external_reference VARCHAR(64) UNIQUE NOT NULL,
            monto_centavos BIGINT NOT NULL,
            moneda VARCHAR(3) DEFAULT 'COP',
            estado VARCHAR(20) NOT NULL DEFAULT 'pending',
            metodo_pago VARCHAR(50),
            codigo_referido VARCHAR(36),
            fecha_creacion TIMESTAMP DEFAULT NOW(),
            fecha_actualizacion TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE INDEX IF NOT EXISTS idx_transacciones_usuario ON transacciones(id_usuario);
        CREATE INDEX IF NOT EXISTS idx_transacciones_estado ON transacciones(estado);
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS usuarios_planes (
            id BIGSERIAL PRIMARY KEY,
            id_usuario BIGINT NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
            plan_id INTEGER NOT NULL REFERENCES planes(id),
            activo BOOLEAN DEFAULT true,
            fecha_activacion TIMESTAMP NOT NULL DEFAULT NOW(),
            fecha_expiracion TIMESTAMP NOT NULL,
            monto_centavos BIGINT NOT NULL DEFAULT 0,
            metodo_pago VARCHAR(50)
        );
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE INDEX IF NOT EXISTS idx_usuarios_planes_usuario ON usuarios_planes(id_usuario);
    `)
	if err != nil {
		return err
	}

	log.Println("✅ Tablas de pagos listas")
	return nil
}

func createReferralTables() error {
	// UNIQUE(payment_id, nivel): a lo sumo una comisión por pago y nivel
	// aunque el webhook llegue repetido.
	_, err := Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS referidos_historial (
            id BIGSERIAL PRIMARY KEY,
            id_referidor BIGINT NOT NULL REFERENCES usuarios(id),
            id_referido BIGINT REFERENCES usuarios(id),
            payment_id BIGINT NOT NULL,
            nivel SMALLINT NOT NULL,
            monto_centavos BIGINT NOT NULL,
            moneda VARCHAR(3) DEFAULT 'COP',
            estado VARCHAR(20) NOT NULL DEFAULT 'pendiente',
            descripcion TEXT,
            fecha_registro TIMESTAMP DEFAULT NOW(),
            fecha_pago TIMESTAMP,
            UNIQUE(payment_id, nivel)
        );
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE INDEX IF NOT EXISTS idx_referidos_historial_referidor ON referidos_historial(id_referidor);
        CREATE INDEX IF NOT EXISTS idx_referidos_historial_estado ON referidos_historial(estado);
    `)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS referidos_totales (
            id_usuario BIGINT PRIMARY KEY REFERENCES usuarios(id) ON DELETE CASCADE,
            total_comisiones_centavos BIGINT NOT NULL DEFAULT 0,
            referidos_activos INTEGER NOT NULL DEFAULT 0,
            ultima_actualizacion TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	log.Println("✅ Tablas de referidos listas")
	return nil
}

func createTwoFATable() error {
	_, err := Pool.Exec(context.Background(), `
        CREATE TABLE IF NOT EXISTS twofa (
            user_id BIGINT PRIMARY KEY REFERENCES usuarios(id) ON DELETE CASCADE,
            secret VARCHAR(64) NOT NULL,
            enabled BOOLEAN DEFAULT false,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	log.Println("✅ Tabla twofa lista")
	return nil
}

// seedPlans carga el catálogo inicial si la tabla está vacía.
func seedPlans() error {
	var count int
	err := Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM planes`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = Pool.Exec(context.Background(), `
            INSERT INTO planes (nombre, descripcion, precio_centavos, moneda, duracion_dias, caracteristicas, orden) VALUES
            ('Básico', 'Acceso a la plataforma Financial360', 4990000, 'COP', 30, '["Panel personal", "Soporte por correo"]', 1),
            ('Premium', 'Plan completo con asesoría', 9990000, 'COP', 30, '["Panel personal", "Asesoría financiera", "Soporte prioritario"]', 2),
            ('Empresarial', 'Para equipos y empresas', 19990000, 'COP', 30, '["Hasta 10 usuarios", "Gestor dedicado", "Reportes mensuales"]', 3);
        `)
		if err != nil {
			return err
		}
		log.Println("✅ Planes iniciales cargados")
	}
	return nil
}
