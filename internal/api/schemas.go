package api

const createOrderSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["user_id", "amount"],
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "currency": {"type": "string", "pattern": "^[A-Z]{3}$"},
    "purpose": {"type": "string", "maxLength": 255}
  }
}`

const verifyPaymentSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["user_id", "order_id", "payment_id", "signature", "amount"],
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "order_id": {"type": "string", "minLength": 1},
    "payment_id": {"type": "string", "minLength": 1},
    "signature": {"type": "string", "minLength": 1},
    "amount": {"type": "number", "exclusiveMinimum": 0}
  }
}`

const deductSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["user_id", "amount"],
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "booking_id": {"type": "string"},
    "booking_type": {"type": "string", "enum": ["astrology", "yoga_class", "yoga_package", "yoga_consultation"]},
    "description": {"type": "string", "maxLength": 255}
  }
}`

const manualAdjustSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["user_id", "amount", "reason"],
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "reason": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`
