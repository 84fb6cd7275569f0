package deflate

import "github.com/kestrel-labs/wsext/header"

func configToParams(cfg Config) header.Params {
	p := header.NewParams()
	if cfg.ServerNoContextTakeover {
		p.Set("server_no_context_takeover", header.FlagValue())
	}
	if cfg.ClientNoContextTakeover {
		p.Set("client_no_context_takeover", header.FlagValue())
	}
	if cfg.ServerMaxWindowBits != 0 {
		p.Set("server_max_window_bits", header.IntValue(int64(cfg.ServerMaxWindowBits)))
	}
	if cfg.ClientMaxWindowBits != 0 {
		p.Set("client_max_window_bits", header.IntValue(int64(cfg.ClientMaxWindowBits)))
	}
	return p
}

func paramsToConfig(p header.Params) (Config, error) {
	var cfg Config
	if p.Has("server_no_context_takeover") {
		cfg.ServerNoContextTakeover = true
	}
	if p.Has("client_no_context_takeover") {
		cfg.ClientNoContextTakeover = true
	}
	if v, ok := p.Get("server_max_window_bits"); ok && v.Kind == header.KindInt {
		cfg.ServerMaxWindowBits = int(v.Int)
	}
	if v, ok := p.Get("client_max_window_bits"); ok && v.Kind == header.KindInt {
		cfg.ClientMaxWindowBits = int(v.Int)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
