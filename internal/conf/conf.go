package conf

type Bootstrap struct {
	Server   *Server
	Data     *Data
	Auth     *Auth
	Analyzer *Analyzer
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Data struct {
	Database *Database
}

type Database struct {
	Driver string
	Source string
}

type Auth struct {
	JwtKey string `json:"jwt_key"`
}

type Analyzer struct {
	Llm         *LLM         `json:"llm"`
	Research    *Research    `json:"research"`
	Concurrency *Concurrency `json:"concurrency"`
	HistoryDir  string       `json:"history_dir"`
	Log         *Log         `json:"log"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Research struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}
