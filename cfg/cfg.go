package cfg

import "fmt"

type (
	App struct {
		Name string `mapstructure:"name"`
		Env  string `mapstructure:"env"`
	}

	HTTP struct {
		Addr string `mapstructure:"addr"`
	}

	Postgres struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Database string `mapstructure:"database"`
		SSLMode  string `mapstructure:"sslmode"`
	}

	S3 struct {
		Endpoint      string `mapstructure:"endpoint"`
		AccessKey     string `mapstructure:"access_key"`
		SecretKey     string `mapstructure:"secret_key"`
		Bucket        string `mapstructure:"bucket"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	}

	Storage struct {
		// Backend is "local" or "s3". Empty selects s3 when credentials
		// are present and local otherwise.
		Backend    string `mapstructure:"backend"`
		UploadsDir string `mapstructure:"uploads_dir"`
		PublicPath string `mapstructure:"public_path"`
		S3         S3     `mapstructure:"s3"`
	}
)

type Config struct {
	App      App      `mapstructure:"app"`
	HTTP     HTTP     `mapstructure:"http"`
	Postgres Postgres `mapstructure:"postgres"`
	Storage  Storage  `mapstructure:"storage"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}
