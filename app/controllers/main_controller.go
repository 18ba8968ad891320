package controllers

import "github.com/gofiber/fiber/v2"

const RootMessage = "AquaRoute API - Real-time waterlogging reports"

func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": RootMessage})
}
