package config

type AppConfig struct {
	Server  ServerConfig
	Chain   ChainConfig
	Refresh RefreshConfig
	Log     LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	chainCfg, err := LoadChain()
	if err != nil {
		return AppConfig{}, err
	}
	refreshCfg, err := LoadRefresh()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:  serverCfg,
		Chain:   chainCfg,
		Refresh: refreshCfg,
		Log:     logCfg,
	}, nil
}
