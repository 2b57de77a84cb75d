package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tonpocket/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// GeneratedConfigFile is where the wizard saves the resulting yaml.
const GeneratedConfigFile = "config.gen.yaml"

// RunTUI launches the terminal configuration wizard and writes the
// resulting yaml config to GeneratedConfigFile.
func RunTUI() error {
	var (
		nickname   string
		listen     string
		platform   string
		refreshStr string
		ttlStr     string
		rateStr    string
		confirm    bool
	)

	// defaults
	def := config.Default()
	nickname = def.Nickname
	listen = def.Listen
	refreshStr = def.RefreshInterval.String()
	ttlStr = def.NotificationTTL.String()
	rateStr = def.DisplayRate.String()

	// step 1: identity
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TONPOCKET CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's set up your wallet.\n"))

	fmt.Println(stepStyle.Render("STEP 1: IDENTITY"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nickname").
				Description("Shown in the wallet header").
				Value(&nickname).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("nickname cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Listen Address").
				Description("host:port for the wallet UI (e.g. :8080)").
				Value(&listen),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: price source
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TONPOCKET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: PRICE SOURCE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should prices come from?").
				Options(
					huh.NewOption("Simulation (random walk)", config.PlatformSimulate),
					huh.NewOption("Binance", config.PlatformBinance),
					huh.NewOption("Bybit", config.PlatformBybit),
					huh.NewOption("Hyperliquid", config.PlatformHyperliquid),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: timing
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TONPOCKET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Price Refresh Interval").
				Description("Duration string (e.g. 10s, 30s, 1m)").
				Value(&refreshStr).
				Validate(validateDuration),
			huh.NewInput().
				Title("Notification Lifetime").
				Description("How long toasts stay visible (e.g. 4s)").
				Value(&ttlStr).
				Validate(validateDuration),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: display currency
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TONPOCKET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: DISPLAY CURRENCY"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RUB per USD rate").
				Description("Starting exchange rate for the RUB total (e.g. 92.5)").
				Value(&rateStr).
				Validate(validateRate),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TONPOCKET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Nickname: %s\nListen: %s\nPrice source: %s\nRefresh: %s\nToast TTL: %s\nRUB rate: %s\n",
		nickname, listen, platform, refreshStr, ttlStr, rateStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	refresh, _ := time.ParseDuration(refreshStr)
	ttl, _ := time.ParseDuration(ttlStr)

	cfgTmp := config.ConfigTmp{
		Nickname:        nickname,
		Listen:          listen,
		Platform:        platform,
		RefreshInterval: refresh,
		NotificationTTL: ttl,
		DisplayRateStr:  rateStr,
	}
	for _, a := range config.DefaultAssets() {
		cfgTmp.Assets = append(cfgTmp.Assets, config.AssetTmp{
			ID:        a.ID,
			Symbol:    a.Symbol,
			Name:      a.Name,
			Balance:   a.Balance.String(),
			PriceUsd:  a.PriceUsd.String(),
			Change24h: a.Change24h.String(),
		})
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(GeneratedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nStarting wallet...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateDuration(s string) error {
	_, err := time.ParseDuration(s)
	return err
}

func validateRate(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}
