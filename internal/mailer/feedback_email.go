package mailer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeedbackRequestSubject 售后反馈邮件的主题。
func FeedbackRequestSubject(saleID int64) string {
	return fmt.Sprintf("How was your purchase? (Order #%d)", saleID)
}

// FeedbackRequestBody 售后反馈邮件的正文。
func FeedbackRequestBody(customerName string, saleID int64, total decimal.Decimal) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f5f5f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: white; padding: 32px; border-radius: 16px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
      <p style="color: #374151; font-size: 16px;">Hi <strong>%s</strong>,</p>
      <p style="color: #374151; font-size: 16px;">
        Thank you for your purchase! Your order <strong>#%d</strong> totalling
        <strong>%s</strong> has been completed.
      </p>
      <p style="color: #374151; font-size: 16px;">
        We would love to hear what you think. Your feedback helps us serve you better.
      </p>
      <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 24px 0;">
      <p style="color: #9ca3af; font-size: 12px; text-align: center;">
        If you did not make this purchase, please ignore this email.
      </p>
    </div>
  </div>
</body>
</html>
`, customerName, saleID, total.StringFixed(2))
}
