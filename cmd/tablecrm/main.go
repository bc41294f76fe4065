package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/abdymaleeq925/tablecrm/internal/config"
	"github.com/abdymaleeq925/tablecrm/internal/crm"
	"github.com/abdymaleeq925/tablecrm/internal/order"
	"github.com/abdymaleeq925/tablecrm/internal/tui"
	"github.com/abdymaleeq925/tablecrm/pkg/logging"
	"github.com/abdymaleeq925/tablecrm/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./tablecrm.yaml if present)")
	token := flag.String("token", "", "cashbox token (overrides config)")
	checkToken := flag.Bool("check-token", false, "verify the token against the CRM and exit")
	list := flag.String("list", "", "print a catalog and exit: contragents|payboxes|organizations|warehouses|price_types|prices")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if *token != "" {
		cfg.Token = *token
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var cm *metrics.ClientMetrics
	if cfg.MetricsAddr != "" {
		cm = metrics.NewClientMetrics(nil)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	client := crm.NewClient(cfg.BaseURL, cfg.Timeout, crm.WithLogger(log), crm.WithMetrics(cm))
	ops := order.NewOps(client, log)

	if *checkToken {
		os.Exit(runCheckToken(ops, cfg.Token, cfg.Timeout))
	}
	if *list != "" {
		os.Exit(runList(client, cfg.Token, *list, cfg.Timeout))
	}

	p := tea.NewProgram(tui.New(ops, cfg.Token), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCheckToken(ops order.Ops, token string, timeout time.Duration) int {
	if token == "" {
		fmt.Fprintln(os.Stderr, "a token is required (-token or TABLECRM_TOKEN)")
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if res := ops.Authenticate(ctx, token); res.Err != nil {
		fmt.Fprintln(os.Stderr, "token rejected:", res.Err)
		return 1
	}
	fmt.Println("token OK")
	return 0
}

func runList(client *crm.Client, token, catalog string, timeout time.Duration) int {
	if token == "" {
		fmt.Fprintln(os.Stderr, "a token is required (-token or TABLECRM_TOKEN)")
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var rows [][2]string
	var err error
	switch catalog {
	case "contragents":
		var l crm.List[crm.Contragent]
		if l, err = client.Contragents(ctx, token); err == nil {
			for _, c := range l.Result {
				rows = append(rows, [2]string{fmt.Sprint(c.ID), fmt.Sprintf("%s (%s)", c.Name, c.Phone)})
			}
		}
	case "payboxes":
		var v []crm.Paybox
		if v, err = client.Payboxes(ctx, token); err == nil {
			for _, p := range v {
				rows = append(rows, [2]string{fmt.Sprint(p.ID), p.Name})
			}
		}
	case "organizations":
		var v []crm.Organization
		if v, err = client.Organizations(ctx, token); err == nil {
			for _, o := range v {
				rows = append(rows, [2]string{fmt.Sprint(o.ID), o.ShortName})
			}
		}
	case "warehouses":
		var v []crm.Warehouse
		if v, err = client.Warehouses(ctx, token); err == nil {
			for _, w := range v {
				rows = append(rows, [2]string{fmt.Sprint(w.ID), w.Name})
			}
		}
	case "price_types":
		var v []crm.PriceType
		if v, err = client.PriceTypes(ctx, token); err == nil {
			for _, p := range v {
				rows = append(rows, [2]string{fmt.Sprint(p.ID), p.Name})
			}
		}
	case "prices":
		var v []crm.PriceItem
		if v, err = client.Prices(ctx, token); err == nil {
			for _, p := range v {
				rows = append(rows, [2]string{fmt.Sprint(p.NomenclatureID), fmt.Sprintf("%s - %g", p.NomenclatureName, p.Price)})
			}
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown catalog:", catalog)
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	for _, r := range rows {
		fmt.Printf("%-8s %s\n", r[0], r[1])
	}
	return 0
}
