package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/localcart"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/reconcile"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

type shell struct {
	api     *client.Client
	ctrl    *reconcile.Controller
	catalog map[int64]domain.Product
	log     *zap.Logger
}

func main() {
	cfg := config.LoadClient()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: "stderr"})
	defer log.Sync()

	var storage localcart.Storage
	where := "memory"
	if cfg.Ephemeral {
		storage = localcart.NewMemoryStorage()
	} else {
		fs, err := localcart.NewFileStorage(cfg.StateDir)
		if err != nil {
			log.Fatal("failed to open state directory", zap.String("dir", cfg.StateDir), zap.Error(err))
		}
		storage, where = fs, fs.Dir()
	}

	api := client.New(cfg.BaseURL, client.WithLogger(log))
	ctrl := reconcile.New(reconcile.Config{
		API:      api,
		Storage:  storage,
		Debounce: cfg.SyncDebounce,
		Logger:   log,
	})

	sh := &shell{api: api, ctrl: ctrl, catalog: make(map[int64]domain.Product), log: log}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	if err := api.Health(ctx); err != nil {
		fmt.Printf("warning: %s is not reachable (%v), working offline\n", cfg.BaseURL, err)
	}
	st, err := ctrl.Start(ctx)
	cancel()
	if err != nil {
		fmt.Printf("warning: %v\n", err)
	}
	fmt.Printf("storefront %s, state in %s\n", cfg.BaseURL, where)
	sh.printCart(st)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for fmt.Print("> "); scanner.Scan(); fmt.Print("> ") {
			lines <- scanner.Text()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

loop:
	for {
		select {
		case <-sigCh:
			fmt.Println()
			break loop
		case line, ok := <-lines:
			if !ok || sh.run(line) {
				break loop
			}
		}
	}

	if err := ctrl.Close(cfg.FlushTimeout); err != nil {
		log.Warn("flush on exit did not complete", zap.Error(err))
	}
}

// run executes one command line and reports whether the shell should exit
func (s *shell) run(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var err error
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help", "?":
		printHelp()
	case "quit", "exit":
		return true
	case "health":
		if err = s.api.Health(ctx); err == nil {
			fmt.Println("server is up")
		}
	case "products":
		err = s.products(ctx)
	case "cart":
		err = s.showCart(ctx)
	case "add":
		err = s.add(ctx, args)
	case "dec":
		err = s.withID(args, func(id int64) error {
			res, err := s.ctrl.Decrement(ctx, id)
			if err == nil {
				if res.Removed {
					fmt.Println("removed")
				} else {
					fmt.Printf("quantity %d\n", res.NewQuantity)
				}
			}
			return err
		})
	case "rm":
		err = s.withID(args, func(id int64) error { return s.ctrl.Remove(ctx, id) })
	case "clear":
		err = s.ctrl.Clear(ctx)
	case "register":
		err = s.register(ctx, args)
	case "login":
		err = s.login(ctx, args)
	case "logout":
		err = s.ctrl.Logout(ctx)
	case "refresh":
		var st reconcile.State
		if st, err = s.ctrl.Refresh(ctx); err == nil {
			s.printCart(st)
		}
	case "fav":
		err = s.favorites(ctx, args)
	case "orders":
		err = s.orders(ctx)
	case "checkout":
		err = s.checkout(ctx, args)
	default:
		fmt.Printf("unknown command %q, type help\n", cmd)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
		if errors.Is(err, client.ErrUnauthorized) {
			if st, serr := s.ctrl.Snapshot(ctx); serr == nil && !st.Authenticated {
				fmt.Println("session expired, you are now browsing as a guest")
			}
		}
	}
	return false
}

func printHelp() {
	fmt.Println(`commands:
  health                        check the server
  products                      list the catalog
  cart                          show the cart
  add <id> | dec <id> | rm <id> change the cart
  clear                         empty the cart
  register <phone> <password> <confirm>
  login <phone> <password>
  logout
  refresh                       re-read the server cart
  fav [id]                      list favorites or toggle one
  orders                        orders of the last 6 hours
  checkout <name> <address...>  place an order
  quit`)
}

func (s *shell) withID(args []string, fn func(id int64) error) error {
	if len(args) != 1 {
		return errors.New("expected one product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	return fn(id)
}

func (s *shell) loadCatalog(ctx context.Context) ([]domain.Product, error) {
	products, err := s.api.Products(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		s.catalog[p.ID] = p
	}
	return products, nil
}

func (s *shell) products(ctx context.Context) error {
	products, err := s.loadCatalog(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%4d  %-30s %12s\n", p.ID, p.Title, p.Price.StringFixed(2))
	}
	return nil
}

func (s *shell) add(ctx context.Context, args []string) error {
	return s.withID(args, func(id int64) error {
		p, ok := s.catalog[id]
		if !ok {
			if _, err := s.loadCatalog(ctx); err != nil {
				return err
			}
			if p, ok = s.catalog[id]; !ok {
				return fmt.Errorf("product %d not found", id)
			}
		}
		qty, err := s.ctrl.Add(ctx, p)
		if err != nil {
			return err
		}
		fmt.Printf("%s x%d\n", p.Title, qty)
		return nil
	})
}

func (s *shell) showCart(ctx context.Context) error {
	st, err := s.ctrl.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.printCart(st)
	return nil
}

func (s *shell) printCart(st reconcile.State) {
	who := "guest"
	if st.Authenticated {
		who = st.Session.Phone
	}
	if st.Cart == nil || st.Cart.IsEmpty() {
		fmt.Printf("[%s] cart is empty\n", who)
		return
	}
	fmt.Printf("[%s] cart (%s):\n", who, st.Cart.Status)
	for _, l := range st.Cart.Items {
		fmt.Printf("%4d  %-30s %3d x %10s\n", l.ProductID, l.Title, l.Quantity, l.Price.StringFixed(2))
	}
	fmt.Printf("total %s\n", st.Cart.Total().StringFixed(2))
}

func (s *shell) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: register <phone> <password> <confirm>")
	}
	res, err := s.api.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	return s.startSession(ctx, res)
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <phone> <password>")
	}
	res, err := s.api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return s.startSession(ctx, res)
}

func (s *shell) startSession(ctx context.Context, res *client.AuthResult) error {
	sess, err := localcart.NewSession(res.User.ID, res.User.Phone, res.Token)
	if err != nil {
		return err
	}
	st, err := s.ctrl.Login(ctx, sess)
	s.printCart(st)
	return err
}

func (s *shell) favorites(ctx context.Context, args []string) error {
	if len(args) == 0 {
		var ids []int64
		err := s.ctrl.WithSession(ctx, func(ctx context.Context, token string) error {
			var err error
			ids, err = s.api.Favorites(ctx, token)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Println("favorites:", ids)
		return nil
	}
	return s.withID(args, func(id int64) error {
		var action string
		err := s.ctrl.WithSession(ctx, func(ctx context.Context, token string) error {
			var err error
			action, err = s.api.ToggleFavorite(ctx, token, id)
			return err
		})
		if err == nil {
			fmt.Println(action)
		}
		return err
	})
}

func (s *shell) orders(ctx context.Context) error {
	var orders []domain.Order
	err := s.ctrl.WithSession(ctx, func(ctx context.Context, token string) error {
		var err error
		orders, err = s.api.Orders(ctx, token)
		return err
	})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no recent orders")
	}
	for _, o := range orders {
		fmt.Printf("order #%d  total %s  delivery %s\n", o.Number, o.Total.StringFixed(2), o.DeliveryDate.Local().Format("15:04"))
		for _, it := range o.Items {
			fmt.Printf("      %-30s %3d x %10s\n", it.Title, it.Quantity, it.Price.StringFixed(2))
		}
	}
	return nil
}

func (s *shell) checkout(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: checkout <name> <address...>")
	}
	o, err := s.ctrl.PlaceOrder(ctx, strings.Join(args[1:], " "), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("order #%d placed, total %s, delivery by %s\n", o.Number, o.Total.StringFixed(2), o.DeliveryDate.Local().Format("15:04"))
	return nil
}
