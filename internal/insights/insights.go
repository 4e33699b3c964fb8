// Package insights answers natural-language analytics questions for
// sellers and admins by letting Gemini call a read-only SQL tool against
// the dedicated read-only pool.
package insights

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Service holds the Gemini client and the read-only database connection.
type Service struct {
	Client *genai.Client
	DB     *sql.DB
	Model  string
}

// NewService initializes the Gemini client against the read-only pool.
func NewService(apiKey, model string, dbReadOnly *sql.DB) (*Service, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create Gemini client")
	}
	return &Service{Client: client, DB: dbReadOnly, Model: model}, nil
}

// Ask runs one insights conversation turn. The model may call the SQL tool
// any number of times before answering; the final text and total token
// usage are returned.
func (s *Service) Ask(ctx context.Context, question, actorRole string, sellerID int64) (string, int, error) {
	model := s.Client.GenerativeModel(s.Model)

	sqlTool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "run_readonly_sql",
				Description: "Executes a READ-ONLY SQL query (SELECT only) against the marketplace database.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The MySQL SELECT query to execute.",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
	model.Tools = []*genai.Tool{sqlTool}

	scope := "You may query any table."
	if actorRole == "seller" {
		scope = fmt.Sprintf("You may only report on rows belonging to seller_id = %d; always add that filter.", sellerID)
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the Bazario insights assistant for a %s.
			Access: MySQL database via run_readonly_sql.
			Schema: %s
			Rules: SELECT only. %s Amounts are whole rupees. Be concise.
		`, actorRole, schemaDefinition, scope))},
	}

	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", 0, errors.Wrap(err, "send message")
	}

	totalTokens := 0
	if res.UsageMetadata != nil {
		totalTokens = int(res.UsageMetadata.TotalTokenCount)
	}

	for {
		if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
			return "No response.", totalTokens, nil
		}
		part := res.Candidates[0].Content.Parts[0]

		funcCall, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), totalTokens, nil
		}

		if funcCall.Name != "run_readonly_sql" {
			return "", totalTokens, errors.Errorf("unknown function: %s", funcCall.Name)
		}

		query, ok := funcCall.Args["query"].(string)
		if !ok {
			return "", totalTokens, errors.New("invalid query argument")
		}

		sqlResult, sqlErr := s.runReadOnlyQuery(query)
		if sqlErr != nil {
			sqlResult = fmt.Sprintf("SQL Error: %v", sqlErr)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     "run_readonly_sql",
			Response: map[string]interface{}{"result": sqlResult},
		})
		if err != nil {
			return "", totalTokens, errors.Wrap(err, "tool response")
		}
		if res.UsageMetadata != nil {
			totalTokens = int(res.UsageMetadata.TotalTokenCount)
		}
	}
}

// runReadOnlyQuery executes a SELECT and renders the rows as JSON for the
// model. Anything that smells like a write is refused before it reaches
// the (already read-only) pool.
func (s *Service) runReadOnlyQuery(query string) (string, error) {
	normalized := strings.ToUpper(query)
	for _, verb := range []string{"UPDATE", "DELETE", "DROP", "INSERT", "ALTER", "TRUNCATE"} {
		if strings.Contains(normalized, verb) {
			return "", errors.New("security violation: modify operations are not allowed")
		}
	}

	rows, err := s.DB.Query(query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}
	count := len(columns)

	tableData := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, count)
		valuePtrs := make([]interface{}, count)
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return "", err
		}
		entry := make(map[string]interface{})
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		tableData = append(tableData, entry)
	}

	jsonData, err := json.Marshal(tableData)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

const schemaDefinition = `
	- users (id, role [customer, seller, admin], status, email, full_name, phone)
	- sellers (id, user_id, store_name, store_slug, status [pending, approved, rejected, suspended], plan_id)
	- products (id, seller_id, sku, slug, name, price, mrp, stock_quantity, status [draft, active, archived])
	- orders (id, order_number, user_id, status, payment_method, payment_status, subtotal, platform_fee, shipping_fee, tax, discount, total, coupon_code, awb_code, courier_name, created_at)
	- order_items (id, order_id, product_id, seller_id, name, sku, unit_price, quantity)
	- order_events (id, order_id, status, description, created_at)
	- return_requests (id, order_id, status [requested, approved, received, quality_passed, quality_failed, refunded, rejected], reason, refund_amount, requested_at, resolved_at)
	- coupons (id, code, type [percent, flat], value, usage_limit, used_count, valid_from, valid_until, active)
	- campaigns (id, slug, title, product_id, discount_percent, starts_at, ends_at, active)
	- subscription_plans (id, name, price, commission_rate, active)
	- seller_subscriptions (id, seller_id, plan_id, started_at, expires_at)
	`
